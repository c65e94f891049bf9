package texts

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEveryLocaleDefinesEveryKey(t *testing.T) {
	locales := Locales()
	require.ElementsMatch(t, []string{"en", "ru"}, locales)
	for _, loc := range locales {
		c, err := Load(loc, "Studio")
		require.NoError(t, err, loc)
		for _, k := range Keys() {
			if k == OperatorLead {
				continue
			}
			assert.NotEmpty(t, c.Get(k), "%s/%s", loc, k)
		}
	}
}

func TestBrandIsInterpolated(t *testing.T) {
	c := MustLoad("en", "ZHB")
	assert.Equal(t, "Welcome to ZHB: Telegram bots built to order!", c.Get(Welcome))
}

func TestRenderOperatorLead(t *testing.T) {
	c := MustLoad("en", "")
	out, err := c.Render(OperatorLead, map[string]string{
		"Name": "Ann", "Project": "Reminder bot", "Budget": "$500",
		"Contact": "@ann", "Timestamp": "2026-03-14 09:05",
	})
	require.NoError(t, err)
	assert.Contains(t, out, "Name: Ann")
	assert.Contains(t, out, "Date: 2026-03-14 09:05")

	_, err = c.Render(OperatorLead, map[string]string{"Name": "Ann"})
	require.Error(t, err)
}

func TestLoadDefaultsAndUnknown(t *testing.T) {
	c, err := Load("", "")
	require.NoError(t, err)
	assert.Equal(t, DefaultLocale, c.Locale())

	_, err = Load("de", "")
	require.Error(t, err)

	_, err = c.Render("nope", nil)
	require.Error(t, err)
}
