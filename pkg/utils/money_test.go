package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRound2(t *testing.T) {
	t.Run("Rounds half up", func(t *testing.T) {
		assert.Equal(t, 10.0, Round2(9.9984))
		assert.Equal(t, 9.99, Round2(9.994))
		assert.Equal(t, 16.0, Round2(200*0.08))
	})

	t.Run("Keeps exact values unchanged", func(t *testing.T) {
		assert.Equal(t, 124.98, Round2(124.98))
		assert.Equal(t, 0.0, Round2(0))
	})
}

func TestPercent(t *testing.T) {
	t.Run("Computes discount amount", func(t *testing.T) {
		assert.Equal(t, 50.0, Percent(250, 20))
		assert.Equal(t, 12.5, Percent(125, 10))
	})

	t.Run("Avoids float truncation", func(t *testing.T) {
		// 0.1+0.2 直接相乘会留下长尾
		assert.Equal(t, 0.03, Percent(0.1+0.2, 10))
	})
}
