package view

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPage_Mutations(t *testing.T) {
	page := NewPage("total-sales", "top-products", "sales-file", "sales-msg")

	require.NoError(t, page.SetText("total-sales", "$1.00"))
	require.NoError(t, page.SetItems("top-products", []string{"a", "b"}))
	require.NoError(t, page.SetValue("sales-file", "sales.csv"))
	require.NoError(t, page.SetMessage("sales-msg", "Uploaded 1 rows.", "success"))

	el, ok := page.Element("total-sales")
	require.True(t, ok)
	assert.Equal(t, "$1.00", el.Text)

	el, _ = page.Element("top-products")
	assert.Equal(t, []string{"a", "b"}, el.Items)

	value, err := page.Value("sales-file")
	require.NoError(t, err)
	assert.Equal(t, "sales.csv", value)

	el, _ = page.Element("sales-msg")
	assert.Equal(t, "Uploaded 1 rows.", el.Text)
	assert.True(t, el.HasClass("success"))

	assert.Equal(t, uint64(4), page.Writes())
}

func TestPage_UnknownElement(t *testing.T) {
	page := NewPage("known")

	assert.ErrorIs(t, page.SetText("missing", "x"), ErrElementNotFound)
	assert.ErrorIs(t, page.SetItems("missing", nil), ErrElementNotFound)
	assert.ErrorIs(t, page.SetClasses("missing", "a"), ErrElementNotFound)
	_, err := page.Value("missing")
	assert.ErrorIs(t, err, ErrElementNotFound)

	assert.Zero(t, page.Writes())
	assert.False(t, page.Has("missing"))
	assert.True(t, page.Has("known"))
}

func TestPage_ResetIsAllOrNothing(t *testing.T) {
	page := NewPage("a", "b")
	require.NoError(t, page.SetValue("a", "1"))
	require.NoError(t, page.SetValue("b", "2"))

	err := page.Reset("a", "missing")
	assert.ErrorIs(t, err, ErrElementNotFound)
	value, _ := page.Value("a")
	assert.Equal(t, "1", value)

	require.NoError(t, page.Reset("a", "b"))
	value, _ = page.Value("a")
	assert.Empty(t, value)
	value, _ = page.Value("b")
	assert.Empty(t, value)
}

func TestPage_SnapshotIsACopy(t *testing.T) {
	page := NewPage("b", "a")
	require.NoError(t, page.SetItems("a", []string{"x"}))
	page.SetBodyClasses("theme-dark")

	snap := page.Snapshot()
	require.Len(t, snap.Elements, 2)
	assert.Equal(t, "a", snap.Elements[0].ID)
	assert.Equal(t, "b", snap.Elements[1].ID)
	assert.Equal(t, []string{"theme-dark"}, snap.Body)

	snap.Elements[0].Items[0] = "mutated"
	el, _ := page.Element("a")
	assert.Equal(t, []string{"x"}, el.Items)

	found, ok := snap.Lookup("b")
	assert.True(t, ok)
	assert.Equal(t, "b", found.ID)
}

func TestPage_ConcurrentWritersLastWins(t *testing.T) {
	page := NewPage("total-orders")

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = page.SetText("total-orders", "n")
		}()
	}
	wg.Wait()

	el, _ := page.Element("total-orders")
	assert.Equal(t, "n", el.Text)
	assert.Equal(t, uint64(50), page.Writes())
}
