package engine

import "github.com/dartmania/game-api/internal/board"

// Throw describes the outcome of applying one dart.
type Throw struct {
	PlayerID   string
	OrderIndex int
	DartNumber int
	Segment    board.Segment
	ScoreDelta int
	Bust       bool
	Finished   bool
	EndTurn    bool
}

// Apply runs one dart through the mode rules and the turn state machine.
// It mutates the state and reports what happened. Applying a dart to a game
// that is not in progress is a no-op and returns ok=false.
//
// A bust restores the thrower's score to the turn-start snapshot, records a
// zero delta and ends the turn as if all three darts were thrown. Cricket
// throws never bust; marks and opponent points from the throw always stand.
func (s *State) Apply(seg board.Segment) (Throw, bool) {
	if s.Status != StatusInProgress || len(s.Players) == 0 {
		return Throw{}, false
	}

	p := s.Players[s.CurrentPlayer]
	if p.DartsThrown == 0 {
		p.TurnStartScore = p.Score
	}

	t := Throw{
		PlayerID:   p.ID,
		OrderIndex: s.CurrentPlayer,
		DartNumber: p.DartsThrown + 1,
		Segment:    seg,
	}

	switch s.Config.Mode {
	case ModeCountdown:
		s.applyCountdown(p, seg, &t)
	case ModeCountup:
		s.applyCountup(p, seg, &t)
	case ModeCricket:
		s.applyCricket(p, seg)
	}

	if t.Bust {
		p.Score = p.TurnStartScore
		t.ScoreDelta = 0
		p.DartsThrown = 3
	} else {
		p.DartsThrown++
	}

	if t.Finished || p.DartsThrown >= 3 {
		t.EndTurn = true
		p.RoundCount++
		p.DartsThrown = 0
		s.CurrentPlayer = (s.CurrentPlayer + 1) % len(s.Players)
		s.DartIndex = 1
	} else {
		s.DartIndex = p.DartsThrown + 1
	}

	if t.Finished || s.cricketWon() || s.roundsExhausted() {
		s.Status = StatusCompleted
	}
	return t, true
}

func (s *State) applyCountdown(p *Player, seg board.Segment, t *Throw) {
	value := seg.Value()
	next := p.Score - value
	switch {
	case next < 0:
		t.Bust = true
	case s.Config.DoubleOut && next == 1:
		t.Bust = true
	case next == 0 && s.Config.DoubleOut && !seg.IsDouble():
		t.Bust = true
	case next == 0:
		p.Score = next
		t.ScoreDelta = -value
		t.Finished = true
	default:
		p.Score = next
		t.ScoreDelta = -value
	}
}

func (s *State) applyCountup(p *Player, seg board.Segment, t *Throw) {
	value := seg.Value()
	next := p.Score + value
	if s.Config.Target <= 0 {
		p.Score = next
		t.ScoreDelta = value
		return
	}
	switch {
	case next > s.Config.Target:
		t.Bust = true
	case next == s.Config.Target && s.Config.DoubleOut && !seg.IsDouble():
		t.Bust = true
	case next == s.Config.Target:
		p.Score = next
		t.ScoreDelta = value
		t.Finished = true
	default:
		p.Score = next
		t.ScoreDelta = value
	}
}

// applyCricket adds the dart's marks one at a time. Marks past the third on
// a target the thrower already closed turn into points on every opponent
// whose count for that target is still below three; opponents who also
// closed it take nothing.
func (s *State) applyCricket(p *Player, seg board.Segment) {
	target, ok := seg.CricketTarget()
	if !ok {
		return
	}
	entry := p.Marks[target]
	value := board.CricketTargetValue(target)
	for remaining := seg.CricketMarks(); remaining > 0; remaining-- {
		if entry.Marks < 3 {
			entry.Marks++
			continue
		}
		for _, opp := range s.Players {
			if opp == p {
				continue
			}
			if opp.Marks[target].Marks < 3 {
				opp.Score += value
				entry.Points += value
			}
		}
	}
}

// CompletionDue reports whether the state already satisfies a completion
// condition regardless of what Status says. Reads use it to finalize games
// whose completing mutation was never followed up.
func (s *State) CompletionDue() bool {
	return s.cricketWon() || s.roundsExhausted()
}

// cricketWon reports whether some player has closed all seven targets while
// holding the lowest score.
func (s *State) cricketWon() bool {
	if s.Config.Mode != ModeCricket {
		return false
	}
	lowest := s.Players[0].Score
	for _, p := range s.Players[1:] {
		if p.Score < lowest {
			lowest = p.Score
		}
	}
	for _, p := range s.Players {
		if p.Score <= lowest && p.closedAll() {
			return true
		}
	}
	return false
}

// roundsExhausted reports whether every player has played the configured
// number of turns. Cricket games run until closed out regardless of rounds.
func (s *State) roundsExhausted() bool {
	if s.Config.Mode == ModeCricket || s.Config.Rounds <= 0 {
		return false
	}
	for _, p := range s.Players {
		if p.RoundCount < s.Config.Rounds {
			return false
		}
	}
	return true
}
