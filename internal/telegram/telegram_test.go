package telegram

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitMessage(t *testing.T) {
	assert.Equal(t, []string{"short"}, SplitMessage("short", 10))

	text := strings.Repeat("line\n", 10)
	parts := SplitMessage(text, 12)
	require.Greater(t, len(parts), 1)
	assert.Equal(t, text, strings.Join(parts, ""))
	for _, p := range parts {
		assert.LessOrEqual(t, len([]rune(p)), 12)
	}

	// no newline to split at
	parts = SplitMessage(strings.Repeat("ж", 25), 10)
	assert.Len(t, parts, 3)
	assert.Equal(t, 10, len([]rune(parts[0])))
}

func TestEscapeMarkdown(t *testing.T) {
	assert.Equal(t, `watch \_this\_ \*now\*`, EscapeMarkdown("watch _this_ *now*"))
	assert.Equal(t, "plain", EscapeMarkdown("plain"))
}

func TestPaginationRow(t *testing.T) {
	assert.Nil(t, PaginationRow(0, 1, "tasks_page_"))

	row := PaginationRow(0, 3, "tasks_page_")
	require.Len(t, row, 2)
	assert.Equal(t, "1/3", row[0].Text)
	assert.Equal(t, "tasks_page_1", row[1].CallbackData)

	row = PaginationRow(2, 3, "tasks_page_")
	require.Len(t, row, 2)
	assert.Equal(t, "tasks_page_1", row[0].CallbackData)
}

func TestPageCount(t *testing.T) {
	assert.Equal(t, 1, PageCount(0, 5))
	assert.Equal(t, 1, PageCount(5, 5))
	assert.Equal(t, 2, PageCount(6, 5))
}

func TestNilLoggerIsNoop(t *testing.T) {
	var l *TelegramLogger
	assert.NotPanics(t, func() { l.Log(LogTypeClaim, "x") })
}
