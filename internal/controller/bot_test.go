package controller

import (
	"testing"

	"github.com/go-telegram/bot/models"
	"github.com/stretchr/testify/assert"
)

func TestCommandMatch(t *testing.T) {
	match := commandMatch("request")

	tests := []struct {
		text string
		want bool
	}{
		{"/request Census__2020 pii", true},
		{"/request", true},
		{"/request@dataset_bot Census__2020 pii", true},
		{"/requests", false},
		{"request Census__2020 pii", false},
		{"/myrequests", false},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			update := &models.Update{Message: &models.Message{Text: tt.text}}
			assert.Equal(t, tt.want, match(update))
		})
	}

	assert.False(t, match(&models.Update{}))
}
