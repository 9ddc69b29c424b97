package brackets

import (
	"math"
	"strconv"
	"strings"

	"github.com/Dosada05/golf-association/models"
)

// PreviousPowerOfTwo returns the largest power of two not above n, and 1 for
// n < 2.
func PreviousPowerOfTwo(n int) int {
	p := 1
	for p*2 <= n {
		p *= 2
	}
	return p
}

// SelectPlaceholderPositions spreads extra reserved slots over a main round of
// targetSize slots. Positions are unique and ordered from the start of the
// round to its end.
func SelectPlaceholderPositions(targetSize, extra int) []int {
	switch {
	case extra <= 0:
		return []int{}
	case extra == 1:
		return []int{0}
	case extra == 2:
		return []int{0, targetSize - 1}
	}

	used := make(map[int]bool, extra)
	positions := make([]int, 0, extra)

	findFree := func(pos int) int {
		if pos < 0 {
			return 0
		}
		if pos >= targetSize {
			return targetSize - 1
		}
		if !used[pos] {
			return pos
		}
		for offset := 1; offset < targetSize; offset++ {
			if right := pos + offset; right < targetSize && !used[right] {
				return right
			}
			if left := pos - offset; left >= 0 && !used[left] {
				return left
			}
		}
		return pos
	}

	for i := 0; i < extra; i++ {
		desired := int(math.Round(float64(targetSize-1) * float64(i) / float64(extra-1)))
		free := findFree(desired)
		used[free] = true
		positions = append(positions, free)
	}
	return positions
}

// BuildMatchesFromSlots pairs slots two at a time. Nil or unnamed slots become
// the placeholder, a trailing odd slot gets a placeholder opponent.
func BuildMatchesFromSlots(slots []*models.Slot, placeholder string) []models.BracketMatch {
	matches := make([]models.BracketMatch, 0, (len(slots)+1)/2)
	for i := 0; i < len(slots); i += 2 {
		var b *models.Slot
		if i+1 < len(slots) {
			b = slots[i+1]
		}
		p1, p1ID := slotSide(slots[i], placeholder)
		p2, p2ID := slotSide(b, placeholder)
		matches = append(matches, models.BracketMatch{P1: p1, P2: p2, P1ID: p1ID, P2ID: p2ID})
	}
	return matches
}

func slotSide(s *models.Slot, placeholder string) (string, *string) {
	if s == nil {
		return placeholder, nil
	}
	name := s.Name
	if name == "" {
		name = placeholder
	}
	var id *string
	if s.ID != nil && *s.ID != "" {
		v := *s.ID
		id = &v
	}
	return name, id
}

func playerSlots(players []models.Player) []*models.Slot {
	slots := make([]*models.Slot, len(players))
	for i, p := range players {
		slots[i] = playerSlot(p)
	}
	return slots
}

func playerSlot(p models.Player) *models.Slot {
	s := &models.Slot{Name: p.Name}
	if p.ID != "" {
		id := p.ID
		s.ID = &id
	}
	return s
}

// BuildMatchPlayBracket seeds players in input order. Fields that are not a
// power of two get a preliminary round played by the last 2*extra seeds, whose
// winners take spread-out slots of the main round.
func BuildMatchPlayBracket(players []models.Player, mainRoundName string, labels Labels) []models.BracketRound {
	if len(players) < 2 {
		return []models.BracketRound{}
	}
	labels = labels.WithDefaults()

	n := len(players)
	baseSize := PreviousPowerOfTwo(n)
	extra := n - baseSize

	if extra == 0 {
		return []models.BracketRound{{
			Name:    mainRoundName,
			Matches: BuildMatchesFromSlots(playerSlots(players), labels.Placeholder),
		}}
	}

	prelimPlayers := players[n-extra*2:]
	mainPlayers := players[:n-extra*2]
	prelimMatches := BuildMatchesFromSlots(playerSlots(prelimPlayers), labels.Placeholder)

	positions := SelectPlaceholderPositions(baseSize, extra)
	orderByPos := make(map[int]int, len(positions))
	for idx, pos := range positions {
		orderByPos[pos] = idx + 1
	}

	slots := make([]*models.Slot, 0, baseSize)
	mainIdx := 0
	for i := 0; i < baseSize; i++ {
		if order, ok := orderByPos[i]; ok {
			slots = append(slots, &models.Slot{Name: preliminaryWinnerLabel(labels, order)})
			continue
		}
		if mainIdx < len(mainPlayers) {
			slots = append(slots, playerSlot(mainPlayers[mainIdx]))
		} else {
			slots = append(slots, nil)
		}
		mainIdx++
	}

	anchorTargets := make([]int, len(positions))
	for i, pos := range positions {
		anchorTargets[i] = pos / 2
	}

	return []models.BracketRound{
		{Name: labels.PreliminaryRound, Matches: prelimMatches, AnchorTargets: anchorTargets},
		{Name: mainRoundName, Matches: BuildMatchesFromSlots(slots, labels.Placeholder)},
	}
}

func preliminaryWinnerLabel(labels Labels, order int) string {
	return strings.Replace(labels.PreliminaryWinner, "{order}", strconv.Itoa(order), 1)
}
