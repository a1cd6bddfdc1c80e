package cron

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNewCronScheduler(t *testing.T) {
	scheduler := NewCronScheduler("Africa/Johannesburg")
	assert.Equal(t, "Africa/Johannesburg", scheduler.Location().String())

	scheduler = NewCronScheduler("Not/AZone")
	assert.Equal(t, time.UTC, scheduler.Location())
}
