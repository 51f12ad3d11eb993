package model

// Payload holds the fields captured by one play grammar. The set of
// implementations is closed; every Kind has exactly one payload type.
type Payload interface {
	Kind() Kind
	payload()
}

// FieldGoalAttempt is a made or missed shot from the field.
type FieldGoalAttempt struct {
	Shooter  string  `json:"shooter"`
	Made     bool    `json:"made"`
	IsThree  bool    `json:"is_three"`
	ShotType string  `json:"shot_type"`
	Distance int     `json:"distance"` // feet; 0 when absent or at the rim
	AtRim    bool    `json:"at_rim"`
	Assister *string `json:"assister,omitempty"`
	Blocker  *string `json:"blocker,omitempty"`
}

// IsAssist reports whether an assist was credited.
func (p FieldGoalAttempt) IsAssist() bool { return p.Assister != nil }

// IsBlock reports whether the shot was blocked.
func (p FieldGoalAttempt) IsBlock() bool { return p.Blocker != nil }

// JumpBall is a contested tip. Team and opponent are never attributed.
type JumpBall struct {
	AwayJumper      string  `json:"away_jumper"`
	HomeJumper      string  `json:"home_jumper"`
	GainsPossession *string `json:"gains_possession,omitempty"`
}

// Rebound is an offensive or defensive rebound by a player or the team.
type Rebound struct {
	Offensive   bool   `json:"offensive"`
	Rebounder   string `json:"rebounder"`
	ReboundTeam string `json:"rebound_team"`
}

// IsTeamRebound reports whether the rebound was credited to the team.
func (p Rebound) IsTeamRebound() bool { return p.Rebounder == TeamActor }

// ShootingFoul is a foul committed on a shooter.
type ShootingFoul struct {
	BlockFoul bool   `json:"block_foul"`
	Fouler    string `json:"fouler"`
	Drawer    string `json:"drawer"`
}

// FreeThrowAttempt is a single free throw.
type FreeThrowAttempt struct {
	Shooter       string `json:"shooter"`
	Made          bool   `json:"made"`
	Technical     bool   `json:"technical"`
	Flagrant      bool   `json:"flagrant"`
	ClearPath     bool   `json:"clear_path"`
	AttemptNum    *int   `json:"attempt_num,omitempty"`
	TotalAttempts *int   `json:"total_attempts,omitempty"`
}

// Substitution swaps one player for another.
type Substitution struct {
	SubIn   string `json:"sub_in"`
	SubOut  string `json:"sub_out"`
	SubTeam string `json:"sub_team"`
}

// TurnoverReason classifies the parenthesised turnover reason.
type TurnoverReason int

// Turnover reasons recognised by the turnover grammar.
const (
	TurnoverOther TurnoverReason = iota
	TurnoverShotClock
	TurnoverTraveling
)

func (r TurnoverReason) String() string {
	switch r {
	case TurnoverShotClock:
		return "shot_clock"
	case TurnoverTraveling:
		return "traveling"
	default:
		return "other"
	}
}

// MarshalText encodes the reason by name.
func (r TurnoverReason) MarshalText() ([]byte, error) { return []byte(r.String()), nil }

// Turnover is a lost possession. ReasonText keeps the provider's wording
// for the "other" reason (e.g. "bad pass", "lost ball").
type Turnover struct {
	TurnoverBy string         `json:"turnover_by"`
	Reason     TurnoverReason `json:"reason"`
	ReasonText string         `json:"reason_text,omitempty"`
	Stealer    *string        `json:"stealer,omitempty"`
}

// IsSteal reports whether a steal was credited.
func (p Turnover) IsSteal() bool { return p.Stealer != nil }

// IsTravel reports whether the turnover was a traveling violation.
func (p Turnover) IsTravel() bool { return p.Reason == TurnoverTraveling }

// FoulParticipants is shared by the foul grammars.
type FoulParticipants struct {
	Fouler   string  `json:"fouler"`
	Drawer   *string `json:"drawer,omitempty"`
	FoulTeam string  `json:"foul_team"`
}

// OffensiveFoul is a foul by the offense. It is also a turnover.
type OffensiveFoul struct {
	FoulParticipants
	Charge bool `json:"charge"`
}

// IsTurnover is always true; an offensive foul gives the ball away.
func (OffensiveFoul) IsTurnover() bool { return true }

// PersonalFoul is a common defensive foul.
type PersonalFoul struct {
	FoulParticipants
	TakeFoul  bool `json:"take_foul"`
	BlockFoul bool `json:"block_foul"`
}

// LooseBallFoul is a foul while neither team has possession.
type LooseBallFoul struct {
	FoulParticipants
}

// AwayFromPlayFoul is a foul away from the ball.
type AwayFromPlayFoul struct {
	FoulParticipants
}

// InboundFoul is a foul during an inbound pass.
type InboundFoul struct {
	FoulParticipants
}

// FlagrantFoul is a type 1 or type 2 flagrant foul.
type FlagrantFoul struct {
	FoulParticipants
	FlagType int `json:"flag_type"`
}

// ClearPathFoul is a foul stopping a clear path to the basket.
type ClearPathFoul struct {
	FoulParticipants
}

// Timeout is a team or official timeout. TimeoutTeam holds either a team
// id or OfficialTimeout.
type Timeout struct {
	TimeoutTeam string `json:"timeout_team"`
	Full        bool   `json:"full"`
}

// IsOfficial reports whether the timeout was called by the officials.
func (p Timeout) IsOfficial() bool { return p.TimeoutTeam == OfficialTimeout }

// TechnicalFoul is a technical on a player or on the team.
type TechnicalFoul struct {
	Fouler   string `json:"fouler"`
	FoulTeam string `json:"foul_team"`
}

// IsTeamTechnical reports whether the technical was assessed to the team.
func (p TechnicalFoul) IsTeamTechnical() bool { return p.Fouler == TeamActor }

// DefensiveThreeSeconds is a defensive three seconds technical.
type DefensiveThreeSeconds struct {
	Fouler   string `json:"fouler"`
	FoulTeam string `json:"foul_team"`
}

// IsTechnical is always true.
func (DefensiveThreeSeconds) IsTechnical() bool { return true }

// Violation is a non-turnover violation such as a kicked ball or lane violation.
type Violation struct {
	Violator      string `json:"violator"`
	ViolationType string `json:"violation_type"`
	ViolationTeam string `json:"violation_team"`
}

// Unparsed keeps the untouched text of a description no grammar matched.
type Unparsed struct {
	Text string `json:"text"`
}

// Actor tokens used by the provider in place of a player id.
const (
	TeamActor       = "Team"
	OfficialTimeout = "Official"
)

func (FieldGoalAttempt) Kind() Kind      { return KindFieldGoalAttempt }
func (JumpBall) Kind() Kind              { return KindJumpBall }
func (Rebound) Kind() Kind               { return KindRebound }
func (ShootingFoul) Kind() Kind          { return KindShootingFoul }
func (FreeThrowAttempt) Kind() Kind      { return KindFreeThrowAttempt }
func (Substitution) Kind() Kind          { return KindSubstitution }
func (Turnover) Kind() Kind              { return KindTurnover }
func (OffensiveFoul) Kind() Kind         { return KindOffensiveFoul }
func (PersonalFoul) Kind() Kind          { return KindPersonalFoul }
func (LooseBallFoul) Kind() Kind         { return KindLooseBallFoul }
func (AwayFromPlayFoul) Kind() Kind      { return KindAwayFromPlayFoul }
func (InboundFoul) Kind() Kind           { return KindInboundFoul }
func (FlagrantFoul) Kind() Kind          { return KindFlagrantFoul }
func (ClearPathFoul) Kind() Kind         { return KindClearPathFoul }
func (Timeout) Kind() Kind               { return KindTimeout }
func (TechnicalFoul) Kind() Kind         { return KindTechnicalFoul }
func (DefensiveThreeSeconds) Kind() Kind { return KindDefensiveThreeSeconds }
func (Violation) Kind() Kind             { return KindViolation }
func (Unparsed) Kind() Kind              { return KindUnparsed }

func (FieldGoalAttempt) payload()      {}
func (JumpBall) payload()              {}
func (Rebound) payload()               {}
func (ShootingFoul) payload()          {}
func (FreeThrowAttempt) payload()      {}
func (Substitution) payload()          {}
func (Turnover) payload()              {}
func (OffensiveFoul) payload()         {}
func (PersonalFoul) payload()          {}
func (LooseBallFoul) payload()         {}
func (AwayFromPlayFoul) payload()      {}
func (InboundFoul) payload()           {}
func (FlagrantFoul) payload()          {}
func (ClearPathFoul) payload()         {}
func (Timeout) payload()               {}
func (TechnicalFoul) payload()         {}
func (DefensiveThreeSeconds) payload() {}
func (Violation) payload()             {}
func (Unparsed) payload()              {}
