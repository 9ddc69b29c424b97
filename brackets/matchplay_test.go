package brackets

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dosada05/golf-association/models"
)

func seededPlayers(n int) []models.Player {
	players := make([]models.Player, n)
	for i := range players {
		players[i] = models.Player{ID: fmt.Sprintf("u%d", i+1), Name: fmt.Sprintf("P%d", i+1)}
	}
	return players
}

func slotCount(round models.BracketRound) int {
	return len(round.Matches) * 2
}

func TestPreviousPowerOfTwo(t *testing.T) {
	cases := map[int]int{0: 1, 1: 1, 2: 2, 3: 2, 4: 4, 5: 4, 7: 4, 8: 8, 17: 16, 64: 64, 100: 64}
	for in, want := range cases {
		assert.Equal(t, want, PreviousPowerOfTwo(in), "n=%d", in)
	}
}

func TestSelectPlaceholderPositions_SpecialCases(t *testing.T) {
	assert.Empty(t, SelectPlaceholderPositions(8, 0))
	assert.Empty(t, SelectPlaceholderPositions(8, -2))
	assert.Equal(t, []int{0}, SelectPlaceholderPositions(8, 1))
	assert.Equal(t, []int{0, 7}, SelectPlaceholderPositions(8, 2))
	assert.Equal(t, []int{0, 2, 5, 7}, SelectPlaceholderPositions(8, 4))
}

func TestSelectPlaceholderPositions_UniqueAndInRange(t *testing.T) {
	for size := 2; size <= 64; size *= 2 {
		for extra := 1; extra*2 <= size; extra++ {
			positions := SelectPlaceholderPositions(size, extra)
			require.Len(t, positions, extra, "size=%d extra=%d", size, extra)

			seen := map[int]bool{}
			for i, pos := range positions {
				assert.GreaterOrEqual(t, pos, 0)
				assert.Less(t, pos, size)
				assert.False(t, seen[pos], "duplicate %d for size=%d extra=%d", pos, size, extra)
				seen[pos] = true
				if i > 0 {
					assert.GreaterOrEqual(t, pos, positions[i-1], "size=%d extra=%d", size, extra)
				}
			}
			assert.Equal(t, 0, positions[0])
		}
	}
}

func TestBuildMatchesFromSlots(t *testing.T) {
	id := "u1"
	slots := []*models.Slot{{Name: "Ana", ID: &id}, nil, {Name: ""}}

	matches := BuildMatchesFromSlots(slots, "N/A")

	require.Len(t, matches, 2)
	assert.Equal(t, "Ana", matches[0].P1)
	require.NotNil(t, matches[0].P1ID)
	assert.Equal(t, "u1", *matches[0].P1ID)
	assert.Equal(t, "N/A", matches[0].P2)
	assert.Nil(t, matches[0].P2ID)
	assert.Equal(t, "N/A", matches[1].P1)
	assert.Equal(t, "N/A", matches[1].P2)
	assert.Nil(t, matches[1].Result)
	assert.Nil(t, matches[1].Winner)
}

func TestBuildMatchPlayBracket_TooFewPlayers(t *testing.T) {
	assert.Empty(t, BuildMatchPlayBracket(nil, "Final", DefaultLabels()))
	assert.Empty(t, BuildMatchPlayBracket(seededPlayers(1), "Final", DefaultLabels()))
}

func TestBuildMatchPlayBracket_PowerOfTwo(t *testing.T) {
	rounds := BuildMatchPlayBracket(seededPlayers(4), "Semifinal", DefaultLabels())

	require.Len(t, rounds, 1)
	assert.Equal(t, "Semifinal", rounds[0].Name)
	assert.Nil(t, rounds[0].AnchorTargets)
	require.Len(t, rounds[0].Matches, 2)
	assert.Equal(t, "P1", rounds[0].Matches[0].P1)
	assert.Equal(t, "P2", rounds[0].Matches[0].P2)
	assert.Equal(t, "P3", rounds[0].Matches[1].P1)
	assert.Equal(t, "P4", rounds[0].Matches[1].P2)
}

func TestBuildMatchPlayBracket_FivePlayers(t *testing.T) {
	labels := DefaultLabels()
	rounds := BuildMatchPlayBracket(seededPlayers(5), "Semifinal", labels)

	require.Len(t, rounds, 2)
	prelim, main := rounds[0], rounds[1]

	assert.Equal(t, labels.PreliminaryRound, prelim.Name)
	require.Len(t, prelim.Matches, 1)
	assert.Equal(t, "P4", prelim.Matches[0].P1)
	assert.Equal(t, "P5", prelim.Matches[0].P2)
	assert.Equal(t, []int{0}, prelim.AnchorTargets)

	assert.Equal(t, "Semifinal", main.Name)
	require.Len(t, main.Matches, 2)
	assert.Equal(t, "Ganador previa #1", main.Matches[0].P1)
	assert.Nil(t, main.Matches[0].P1ID)
	assert.Equal(t, "P1", main.Matches[0].P2)
	assert.Equal(t, "P2", main.Matches[1].P1)
	assert.Equal(t, "P3", main.Matches[1].P2)
}

func TestBuildMatchPlayBracket_SevenPlayers(t *testing.T) {
	rounds := BuildMatchPlayBracket(seededPlayers(7), "Semifinal", DefaultLabels())

	require.Len(t, rounds, 2)
	assert.Equal(t, []int{0, 1, 1}, rounds[0].AnchorTargets)
	main := rounds[1]
	assert.Equal(t, "Ganador previa #1", main.Matches[0].P1)
	assert.Equal(t, "P1", main.Matches[0].P2)
	assert.Equal(t, "Ganador previa #2", main.Matches[1].P1)
	assert.Equal(t, "Ganador previa #3", main.Matches[1].P2)
}

func TestBuildMatchPlayBracket_SlotCounts(t *testing.T) {
	for n := 2; n <= 70; n++ {
		rounds := BuildMatchPlayBracket(seededPlayers(n), "Main", DefaultLabels())
		base := PreviousPowerOfTwo(n)
		extra := n - base

		if extra == 0 {
			require.Len(t, rounds, 1, "n=%d", n)
			assert.Equal(t, base, slotCount(rounds[0]), "n=%d", n)
			continue
		}
		require.Len(t, rounds, 2, "n=%d", n)
		assert.Len(t, rounds[0].Matches, extra, "n=%d", n)
		assert.Len(t, rounds[0].AnchorTargets, extra, "n=%d", n)
		assert.Equal(t, base, slotCount(rounds[1]), "n=%d", n)

		for _, target := range rounds[0].AnchorTargets {
			assert.Less(t, target, len(rounds[1].Matches))
		}

		// every player appears exactly once across both rounds
		seen := map[string]int{}
		for _, r := range rounds {
			for _, m := range r.Matches {
				if m.P1ID != nil {
					seen[*m.P1ID]++
				}
				if m.P2ID != nil {
					seen[*m.P2ID]++
				}
			}
		}
		assert.Len(t, seen, n, "n=%d", n)
		for id, count := range seen {
			assert.Equal(t, 1, count, "player %s n=%d", id, n)
		}
	}
}

func TestBuildMatchPlayBracket_CustomLabels(t *testing.T) {
	labels := Labels{PreliminaryRound: "Preliminary", PreliminaryWinner: "Preliminary winner #{order}"}
	rounds := BuildMatchPlayBracket(seededPlayers(3), "Final", labels)

	require.Len(t, rounds, 2)
	assert.Equal(t, "Preliminary", rounds[0].Name)
	assert.Equal(t, "Preliminary winner #1", rounds[1].Matches[0].P1)
}

func TestMatchPlayGenerator(t *testing.T) {
	gen := NewMatchPlayGenerator(DefaultLabels())
	assert.Equal(t, "MatchPlay", gen.GetName())

	_, err := gen.GenerateBracket(context.Background(), GenerateBracketParams{Players: seededPlayers(1)})
	assert.ErrorIs(t, err, ErrNotEnoughPlayers)

	stored, err := gen.GenerateBracket(context.Background(), GenerateBracketParams{Players: seededPlayers(6)})
	require.NoError(t, err)
	assert.Equal(t, models.BracketSchemaVersion, stored.SchemaVersion)
	assert.Equal(t, 4, stored.TargetPlayers)
	require.Len(t, stored.Rounds, 2)
	assert.Equal(t, DefaultLabels().FirstRound, stored.Rounds[1].Name)
}

func TestMatchPlayGenerator_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewMatchPlayGenerator(DefaultLabels()).GenerateBracket(ctx, GenerateBracketParams{Players: seededPlayers(4)})
	assert.ErrorIs(t, err, context.Canceled)
}
