package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseUserAgent(t *testing.T) {
	desktop := ParseUserAgent("Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/129.0.0.0 Safari/537.36")
	assert.Equal(t, "desktop", desktop.Type)
	assert.Equal(t, "Chrome 129", desktop.Browser)
	assert.Equal(t, "Chrome on macOS", desktop.Name)

	phone := ParseUserAgent("Mozilla/5.0 (Linux; Android 14; Pixel 8) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/129.0.0.0 Mobile Safari/537.36")
	assert.Equal(t, "mobile", phone.Type)
	assert.Equal(t, "Chrome on Android", phone.Name)

	tablet := ParseUserAgent("Mozilla/5.0 (iPad; CPU OS 17_0 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.0 Mobile/15E148 Safari/604.1")
	assert.Equal(t, "tablet", tablet.Type)

	unknown := ParseUserAgent("")
	assert.Equal(t, "Unknown device", unknown.Name)
}
