package engine

const (
	MatchOvers = 20
	MaxWickets = 10

	// runs per over are drawn from [0, maxRunsPerOver)
	maxRunsPerOver = 15
	// a side loses a wicket in an over when its draw is above this
	wicketThreshold = 0.8
)

type Side string

const (
	SideIndia    Side = "India"
	SideOpponent Side = "Opponent"
)

func ParseSide(s string) (Side, bool) {
	switch Side(s) {
	case SideIndia, SideOpponent:
		return Side(s), true
	default:
		return "", false
	}
}

type MatchStatus string

const (
	MatchIdle     MatchStatus = "idle"
	MatchRunning  MatchStatus = "running"
	MatchFinished MatchStatus = "finished"
)

// RandomSource is satisfied by *math/rand.Rand.
type RandomSource interface {
	Intn(n int) int
	Float64() float64
}

type Match struct {
	Status          MatchStatus `json:"status"`
	Overs           int         `json:"overs"`
	ScoreTeam       int         `json:"score_team"`
	ScoreOpponent   int         `json:"score_opponent"`
	WicketsTeam     int         `json:"wickets_team"`
	WicketsOpponent int         `json:"wickets_opponent"`
	Winner          Side        `json:"winner,omitempty"`
}

// Over is what one tick added to each side.
type Over struct {
	Number         int
	RunsTeam       int
	RunsOpponent   int
	WicketTeam     bool
	WicketOpponent bool
}

func NewMatch() Match {
	return Match{Status: MatchIdle}
}

func (m Match) Start() Match {
	return Match{Status: MatchRunning}
}

// Tick bowls one over. The over that brings the count to MatchOvers also
// closes the match and settles the winner from the final scores.
func (m Match) Tick(src RandomSource) (Match, Over, error) {
	if m.Status != MatchRunning || m.Overs >= MatchOvers {
		return m, Over{}, ErrMatchNotRunning
	}

	over := Over{
		Number:       m.Overs + 1,
		RunsTeam:     src.Intn(maxRunsPerOver),
		RunsOpponent: src.Intn(maxRunsPerOver),
	}
	over.WicketTeam = src.Float64() > wicketThreshold
	over.WicketOpponent = src.Float64() > wicketThreshold

	return m.apply(over), over, nil
}

func (m Match) apply(o Over) Match {
	m.ScoreTeam += o.RunsTeam
	m.ScoreOpponent += o.RunsOpponent
	if o.WicketTeam {
		m.WicketsTeam = min(m.WicketsTeam+1, MaxWickets)
	}
	if o.WicketOpponent {
		m.WicketsOpponent = min(m.WicketsOpponent+1, MaxWickets)
	}
	m.Overs = o.Number

	if m.Overs >= MatchOvers {
		m.Status = MatchFinished
		m.Winner = m.leader()
	}
	return m
}

// leader favours the opponent on a tie.
func (m Match) leader() Side {
	if m.ScoreTeam > m.ScoreOpponent {
		return SideIndia
	}
	return SideOpponent
}
