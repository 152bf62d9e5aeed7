// Package records contains the normalized fighter and event records shared by the scraper,
// the linker and the stores.
//
// Fighters and events never hold references to each other, only slugs, so each collection can be
// serialized on its own and re-linked at any time.
package records

const (
	// ResultTBD is the bout result of a fight with no known outcome yet.
	ResultTBD = "TBD"
	// ResultDraw is the canonical bout result of a draw.
	ResultDraw = "Draw"
	// ResultCancelled is the canonical bout result of a cancelled fight.
	ResultCancelled = "Cancelled"
)

// history entry results, an empty result means the fight did not happen
const (
	HistoryWin  = "win"
	HistoryLose = "lose"
	HistoryDraw = "draw"
)

// HistoryStatusCancelled marks a history entry of a cancelled fight.
const HistoryStatusCancelled = "cancelled"

// MethodCount is one line of a fighter's win or loss method distribution.
type MethodCount struct {
	Method     string `json:"method" bson:"method" yaml:"method"`
	Count      int    `json:"count" bson:"count" yaml:"count"`
	Percentage string `json:"percentage" bson:"percentage" yaml:"percentage"`
}

// FighterStats are the descriptive statistics shown on a fighter's profile.
type FighterStats struct {
	FightTimeAvg                string  `json:"fight_time_avg,omitempty" bson:"fight_time_avg,omitempty" yaml:"fight_time_avg,omitempty"`
	FightTimeUfcAvg             string  `json:"fight_time_ufc_avg,omitempty" bson:"fight_time_ufc_avg,omitempty" yaml:"fight_time_ufc_avg,omitempty"`
	FirstRoundFinishes          int     `json:"first_round_finishes,omitempty" bson:"first_round_finishes,omitempty" yaml:"first_round_finishes,omitempty"`
	SignificantStrikesPerMinute string  `json:"significant_strikes_per_minute,omitempty" bson:"significant_strikes_per_minute,omitempty" yaml:"significant_strikes_per_minute,omitempty"`
	SignificantStrikeAccuracy   string  `json:"significant_strike_accuracy,omitempty" bson:"significant_strike_accuracy,omitempty" yaml:"significant_strike_accuracy,omitempty"`
	SignificantStrikesAbsorbed  string  `json:"significant_strikes_absorbed,omitempty" bson:"significant_strikes_absorbed,omitempty" yaml:"significant_strikes_absorbed,omitempty"`
	SignificantStrikeDefense    string  `json:"significant_strike_defense,omitempty" bson:"significant_strike_defense,omitempty" yaml:"significant_strike_defense,omitempty"`
	TakedownAverage             string  `json:"takedown_average,omitempty" bson:"takedown_average,omitempty" yaml:"takedown_average,omitempty"`
	TakedownAccuracy            string  `json:"takedown_accuracy,omitempty" bson:"takedown_accuracy,omitempty" yaml:"takedown_accuracy,omitempty"`
	TakedownDefense             string  `json:"takedown_defense,omitempty" bson:"takedown_defense,omitempty" yaml:"takedown_defense,omitempty"`
	SubmissionAttemptsPer15Min  float64 `json:"submission_attempts_per_15_min,omitempty" bson:"submission_attempts_per_15_min,omitempty" yaml:"submission_attempts_per_15_min,omitempty"`
}

// HistoryEntry is a fighter's own record of one past (or cancelled) bout.
type HistoryEntry struct {
	Date         string `json:"date" bson:"date" yaml:"date"`
	Event        string `json:"event" bson:"event" yaml:"event"`
	EventSlug    string `json:"event_slug,omitempty" bson:"event_slug,omitempty" yaml:"event_slug,omitempty"`
	Opponent     string `json:"opponent" bson:"opponent" yaml:"opponent"`
	OpponentSlug string `json:"opponent_slug,omitempty" bson:"opponent_slug,omitempty" yaml:"opponent_slug,omitempty"`
	Result       string `json:"result" bson:"result" yaml:"result"`
	Status       string `json:"status,omitempty" bson:"status,omitempty" yaml:"status,omitempty"`
	Method       string `json:"method" bson:"method" yaml:"method"`
	Round        string `json:"round" bson:"round" yaml:"round"`
	Time         string `json:"time" bson:"time" yaml:"time"`
	Division     string `json:"division,omitempty" bson:"division,omitempty" yaml:"division,omitempty"`
	Importance   string `json:"importance,omitempty" bson:"importance,omitempty" yaml:"importance,omitempty"`
}

// Cancelled reports whether the entry describes a fight that did not take place.
func (h HistoryEntry) Cancelled() bool {
	return h.Status == HistoryStatusCancelled
}

// Fighter is a fighter profile.
type Fighter struct {
	ID       int    `json:"id" bson:"id" yaml:"id"`
	Slug     string `json:"slug" bson:"slug" yaml:"slug" validate:"required"`
	Name     string `json:"name" bson:"name" yaml:"name" validate:"required"`
	Nickname string `json:"nickname,omitempty" bson:"nickname,omitempty" yaml:"nickname,omitempty"`

	Country  string `json:"country,omitempty" bson:"country,omitempty" yaml:"country,omitempty"`
	Division string `json:"division,omitempty" bson:"division,omitempty" yaml:"division,omitempty"`
	Age      int    `json:"age,omitempty" bson:"age,omitempty" yaml:"age,omitempty"`
	Height   int    `json:"height,omitempty" bson:"height,omitempty" yaml:"height,omitempty"`
	Weight   int    `json:"weight,omitempty" bson:"weight,omitempty" yaml:"weight,omitempty"`
	Reach    int    `json:"reach,omitempty" bson:"reach,omitempty" yaml:"reach,omitempty"`
	LegReach int    `json:"leg_reach,omitempty" bson:"leg_reach,omitempty" yaml:"leg_reach,omitempty"`
	Stance   string `json:"stance,omitempty" bson:"stance,omitempty" yaml:"stance,omitempty"`
	Style    string `json:"style,omitempty" bson:"style,omitempty" yaml:"style,omitempty"`

	Wins   int    `json:"wins" bson:"wins" yaml:"wins"`
	Losses int    `json:"losses" bson:"losses" yaml:"losses"`
	Draws  int    `json:"draws" bson:"draws" yaml:"draws"`
	Record string `json:"record" bson:"record" yaml:"record"`
	Rank   string `json:"rank,omitempty" bson:"rank,omitempty" yaml:"rank,omitempty"`
	Image  string `json:"image" bson:"image" yaml:"image"`
	// Bio is rendered as the document body by the markdown store.
	Bio string `json:"bio,omitempty" bson:"bio,omitempty" yaml:"-"`

	WinMethods  []MethodCount `json:"win_methods,omitempty" bson:"win_methods,omitempty" yaml:"win_methods,omitempty"`
	LossMethods []MethodCount `json:"loss_methods,omitempty" bson:"loss_methods,omitempty" yaml:"loss_methods,omitempty"`
	Stats       FighterStats  `json:"stats" bson:"stats" yaml:"stats"`

	FightsHistory []HistoryEntry `json:"fights_history" bson:"fights_history" yaml:"fights_history"`
}

// Bout is a scheduled contest on an event's fight card.
type Bout struct {
	Fighter1     string `json:"fighter1" bson:"fighter1" yaml:"fighter1"`
	Fighter2     string `json:"fighter2" bson:"fighter2" yaml:"fighter2"`
	Fighter1Slug string `json:"fighter1_slug,omitempty" bson:"fighter1_slug,omitempty" yaml:"fighter1_slug,omitempty"`
	Fighter2Slug string `json:"fighter2_slug,omitempty" bson:"fighter2_slug,omitempty" yaml:"fighter2_slug,omitempty"`
	Weight       string `json:"weight" bson:"weight" yaml:"weight"`
	Time         string `json:"time" bson:"time" yaml:"time"`
	Rounds       string `json:"rounds" bson:"rounds" yaml:"rounds"`
	Result       string `json:"result,omitempty" bson:"result,omitempty" yaml:"result,omitempty"`
}

// Pending reports whether the bout has no known outcome yet.
func (b Bout) Pending() bool {
	return b.Result == "" || b.Result == ResultTBD
}

// Event is a tournament with its fight cards.
type Event struct {
	ID       int    `json:"id" bson:"id" yaml:"id"`
	Slug     string `json:"slug" bson:"slug" yaml:"slug" validate:"required"`
	Name     string `json:"name" bson:"name" yaml:"name" validate:"required"`
	Date     string `json:"date" bson:"date" yaml:"date" validate:"required,datetime=2006-01-02"`
	Time     string `json:"time" bson:"time" yaml:"time"`
	Location string `json:"location" bson:"location" yaml:"location"`
	Poster   string `json:"poster" bson:"poster" yaml:"poster"`

	MainCard    []Bout `json:"main_card" bson:"main_card" yaml:"main_card"`
	PrelimsCard []Bout `json:"prelims_card" bson:"prelims_card" yaml:"prelims_card"`
}

// Cards returns the main card and the prelims card, in that order.
func (e *Event) Cards() [][]Bout {
	return [][]Bout{e.MainCard, e.PrelimsCard}
}

// Snapshot is the pair of collections loaded from and saved to a store.
type Snapshot struct {
	Fighters []Fighter
	Events   []Event
}

// Collections selects which collections of a snapshot an operation touches.
type Collections int

const (
	CollectionFighters Collections = 1 << iota
	CollectionEvents

	CollectionAll = CollectionFighters | CollectionEvents
)

func (c Collections) Has(other Collections) bool {
	return c&other != 0
}
