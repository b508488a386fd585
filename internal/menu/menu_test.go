package menu

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestBoard() *Board {
	return NewBoard(
		[]string{SelectTimePeriod, SelectMagnitude, SelectDepth},
		map[string]string{SelectMagnitude: "Magnitude", SelectDepth: "Depth"},
	)
}

func TestNewBoard_Placeholders(t *testing.T) {
	b := newTestBoard()

	mag, ok := b.Get(SelectMagnitude)
	require.True(t, ok)
	assert.Equal(t, []string{"Magnitude"}, mag.Options)
	assert.Equal(t, "Magnitude", mag.Selected)

	period, ok := b.Get(SelectTimePeriod)
	require.True(t, ok)
	assert.Empty(t, period.Options)
}

func TestRepopulate_KeepsFirstOption(t *testing.T) {
	b := newTestBoard()

	require.NoError(t, b.Repopulate(SelectMagnitude, []string{"<2.5", "2.5-5.4"}))
	require.NoError(t, b.Repopulate(SelectMagnitude, []string{"8.0+"}))

	mag, _ := b.Get(SelectMagnitude)
	assert.Equal(t, []string{"Magnitude", "8.0+"}, mag.Options)
	assert.Equal(t, "Magnitude", mag.Selected)
}

func TestRepopulate_EmptyLabelsLeavesPlaceholder(t *testing.T) {
	b := newTestBoard()
	require.NoError(t, b.Repopulate(SelectDepth, []string{"10-30"}))
	require.NoError(t, b.Repopulate(SelectDepth, nil))

	depth, _ := b.Get(SelectDepth)
	assert.Equal(t, []string{"Depth"}, depth.Options)
}

func TestRepopulate_EmptySelectTakesFirstLabelAsPlaceholder(t *testing.T) {
	b := newTestBoard()
	require.NoError(t, b.Repopulate(SelectTimePeriod, []string{"Past 30 Days", "Past Day"}))
	require.NoError(t, b.Repopulate(SelectTimePeriod, []string{"Past Hour"}))

	period, _ := b.Get(SelectTimePeriod)
	assert.Equal(t, []string{"Past 30 Days", "Past Hour"}, period.Options)
}

func TestRepopulate_UnknownSelect(t *testing.T) {
	err := newTestBoard().Repopulate("selectColour", []string{"red"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnknownSelect))
}

func TestChoose(t *testing.T) {
	b := newTestBoard()
	require.NoError(t, b.Repopulate(SelectMagnitude, []string{"<2.5"}))

	assert.True(t, b.Choose(SelectMagnitude, "<2.5"))
	assert.False(t, b.Choose(SelectMagnitude, "8.0+"))
	assert.False(t, b.Choose("nope", "<2.5"))

	mag, _ := b.Get(SelectMagnitude)
	assert.Equal(t, "<2.5", mag.Selected)
}

func TestAll_ReturnsCopiesInOrder(t *testing.T) {
	b := newTestBoard()
	all := b.All()
	require.Len(t, all, 3)
	assert.Equal(t, SelectTimePeriod, all[0].ID)
	assert.Equal(t, SelectDepth, all[2].ID)

	all[1].Options[0] = "mutated"
	mag, _ := b.Get(SelectMagnitude)
	assert.Equal(t, "Magnitude", mag.Options[0])
}
