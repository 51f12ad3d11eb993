package classify

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/okian/pbpwpa/internal/domain/model"
)

// player matches a provider player id: up to seven word characters
// followed by two digits (e.g. "jamesle01", "Bob23").
const player = `\w{0,7}\d{2}`

// drawnBy is the optional "(drawn by X)" suffix shared by the foul grammars.
const drawnBy = `(?: \(drawn by (?P<drawer>` + player + `)\))?`

// rule pairs a grammar with the constructor for its payload. build may
// decline a match by returning false, in which case the cascade continues.
type rule struct {
	kind  model.Kind
	re    *regexp.Regexp
	build func(c captures) (model.Payload, bool)
}

func grammar(pattern string) *regexp.Regexp {
	return regexp.MustCompile(`(?i)^` + pattern)
}

// rules is evaluated top to bottom and the first match wins. Order matters:
// the offensive-foul turnover grammar must precede the generic turnover
// grammar, whose free-form reason would otherwise swallow it.
var rules = []rule{
	{
		kind: model.KindFieldGoalAttempt,
		re: grammar(`(?P<shooter>` + player + `) (?P<made>makes|misses) (?P<three>2|3)-pt ` +
			`(?P<shot>jump shot|hook shot|layup|dunk|tip-in|shot)` +
			`(?: from (?P<dist>\d+) ft| (?P<rim>at rim))?` +
			`(?: \(assist by (?P<assister>` + player + `)\)| \(block by (?P<blocker>` + player + `)\))?`),
		build: buildFieldGoal,
	},
	{
		kind: model.KindJumpBall,
		re: grammar(`Jump ball: (?P<away>` + player + `) vs\. (?P<home>` + player + `)` +
			`(?: \((?P<gains>` + player + `) gains possession\))?`),
		build: buildJumpBall,
	},
	{
		kind:  model.KindRebound,
		re:    grammar(`(?P<side>Offensive|Defensive) rebound by (?P<rebounder>` + player + `|Team)`),
		build: buildRebound,
	},
	{
		kind: model.KindShootingFoul,
		re: grammar(`Shooting(?P<block> block)? foul by (?P<fouler>` + player + `) ` +
			`\(drawn by (?P<drawer>` + player + `)\)`),
		build: buildShootingFoul,
	},
	{
		kind: model.KindFreeThrowAttempt,
		re: grammar(`(?P<shooter>` + player + `) (?P<made>makes|misses) ` +
			`(?P<tech>technical )?(?P<flag>flagrant )?(?P<clear>clear path )?free throw` +
			`(?: (?P<num>\d+) of (?P<total>\d+))?`),
		build: buildFreeThrow,
	},
	{
		kind:  model.KindSubstitution,
		re:    grammar(`(?P<in>` + player + `) enters the game for (?P<out>` + player + `)`),
		build: buildSubstitution,
	},
	{
		kind:  model.KindOffensiveFoul,
		re:    grammar(`Turnover by (?P<fouler>` + player + `|Team) \(offensive foul\)`),
		build: buildOffensiveFoulTurnover,
	},
	{
		kind: model.KindTurnover,
		re: grammar(`Turnover by (?P<by>` + player + `|Team) \(` +
			`(?:(?P<shotclock>shot clock)|(?P<travel>traveling)|` +
			`(?P<reason>[^;]+)(?:; steal by (?P<stealer>` + player + `))?)\)`),
		build: buildTurnover,
	},
	{
		kind:  model.KindOffensiveFoul,
		re:    grammar(`Offensive(?P<charge> charge)? foul by (?P<fouler>` + player + `)` + drawnBy),
		build: buildOffensiveFoul,
	},
	{
		kind: model.KindPersonalFoul,
		re: grammar(`Personal (?P<take>take )?(?P<block>block )?foul by (?P<fouler>` + player + `)` +
			drawnBy),
		build: buildPersonalFoul,
	},
	{
		kind: model.KindLooseBallFoul,
		re:   grammar(`Loose ball foul by (?P<fouler>` + player + `)` + drawnBy),
		build: func(c captures) (model.Payload, bool) {
			return model.LooseBallFoul{FoulParticipants: c.participants()}, true
		},
	},
	{
		kind: model.KindAwayFromPlayFoul,
		re:   grammar(`Away from play foul by (?P<fouler>` + player + `)` + drawnBy),
		build: func(c captures) (model.Payload, bool) {
			return model.AwayFromPlayFoul{FoulParticipants: c.participants()}, true
		},
	},
	{
		kind: model.KindInboundFoul,
		re:   grammar(`Inbound foul by (?P<fouler>` + player + `)` + drawnBy),
		build: func(c captures) (model.Payload, bool) {
			return model.InboundFoul{FoulParticipants: c.participants()}, true
		},
	},
	{
		kind:  model.KindFlagrantFoul,
		re:    grammar(`Flagrant foul type (?P<type>1|2) by (?P<fouler>` + player + `)` + drawnBy),
		build: buildFlagrantFoul,
	},
	{
		kind: model.KindClearPathFoul,
		re:   grammar(`Clear path foul by (?P<fouler>` + player + `)` + drawnBy),
		build: func(c captures) (model.Payload, bool) {
			return model.ClearPathFoul{FoulParticipants: c.participants()}, true
		},
	},
	{
		kind:  model.KindTimeout,
		re:    grammar(`(?P<team>.*?) (?P<full>full )?timeout`),
		build: buildTimeout,
	},
	{
		kind: model.KindTechnicalFoul,
		re:   grammar(`Technical foul by (?P<fouler>` + player + `|Team)`),
		build: func(c captures) (model.Payload, bool) {
			return model.TechnicalFoul{Fouler: c.actor("fouler")}, true
		},
	},
	{
		kind: model.KindDefensiveThreeSeconds,
		re:   grammar(`Def 3 sec tech foul by (?P<fouler>` + player + `)`),
		build: func(c captures) (model.Payload, bool) {
			return model.DefensiveThreeSeconds{Fouler: c.get("fouler")}, true
		},
	},
	{
		kind: model.KindViolation,
		re:   grammar(`Violation by (?P<violator>` + player + `|Team) \((?P<type>.*)\)`),
		build: func(c captures) (model.Payload, bool) {
			return model.Violation{Violator: c.actor("violator"), ViolationType: c.get("type")}, true
		},
	},
}

func buildFieldGoal(c captures) (model.Payload, bool) {
	return model.FieldGoalAttempt{
		Shooter:  c.get("shooter"),
		Made:     c.is("made", "makes"),
		IsThree:  c.get("three") == "3",
		ShotType: strings.ToLower(c.get("shot")),
		Distance: c.intOr("dist", 0),
		AtRim:    c.has("rim"),
		Assister: c.opt("assister"),
		Blocker:  c.opt("blocker"),
	}, true
}

func buildJumpBall(c captures) (model.Payload, bool) {
	return model.JumpBall{
		AwayJumper:      c.get("away"),
		HomeJumper:      c.get("home"),
		GainsPossession: c.opt("gains"),
	}, true
}

func buildRebound(c captures) (model.Payload, bool) {
	return model.Rebound{
		Offensive: c.is("side", "offensive"),
		Rebounder: c.actor("rebounder"),
	}, true
}

func buildShootingFoul(c captures) (model.Payload, bool) {
	return model.ShootingFoul{
		BlockFoul: c.has("block"),
		Fouler:    c.get("fouler"),
		Drawer:    c.get("drawer"),
	}, true
}

func buildFreeThrow(c captures) (model.Payload, bool) {
	return model.FreeThrowAttempt{
		Shooter:       c.get("shooter"),
		Made:          c.is("made", "makes"),
		Technical:     c.has("tech"),
		Flagrant:      c.has("flag"),
		ClearPath:     c.has("clear"),
		AttemptNum:    c.optInt("num"),
		TotalAttempts: c.optInt("total"),
	}, true
}

func buildSubstitution(c captures) (model.Payload, bool) {
	return model.Substitution{SubIn: c.get("in"), SubOut: c.get("out")}, true
}

// buildOffensiveFoulTurnover folds "Turnover by X (offensive foul)" into the
// offensive foul kind so the same play is never counted under both grammars.
func buildOffensiveFoulTurnover(c captures) (model.Payload, bool) {
	return model.OffensiveFoul{FoulParticipants: model.FoulParticipants{Fouler: c.actor("fouler")}}, true
}

func buildTurnover(c captures) (model.Payload, bool) {
	p := model.Turnover{TurnoverBy: c.actor("by")}
	switch {
	case c.has("shotclock"):
		p.Reason = model.TurnoverShotClock
	case c.has("travel"):
		p.Reason = model.TurnoverTraveling
	default:
		p.Reason = model.TurnoverOther
		p.ReasonText = strings.TrimSpace(c.get("reason"))
		p.Stealer = c.opt("stealer")
	}
	return p, true
}

func buildOffensiveFoul(c captures) (model.Payload, bool) {
	return model.OffensiveFoul{FoulParticipants: c.participants(), Charge: c.has("charge")}, true
}

func buildPersonalFoul(c captures) (model.Payload, bool) {
	return model.PersonalFoul{
		FoulParticipants: c.participants(),
		TakeFoul:         c.has("take"),
		BlockFoul:        c.has("block"),
	}, true
}

func buildFlagrantFoul(c captures) (model.Payload, bool) {
	return model.FlagrantFoul{FoulParticipants: c.participants(), FlagType: c.intOr("type", 1)}, true
}

func buildTimeout(c captures) (model.Payload, bool) {
	team := strings.TrimSpace(c.get("team"))
	if team == "" {
		return nil, false
	}
	p := model.Timeout{TimeoutTeam: team, Full: c.has("full")}
	if strings.EqualFold(team, model.OfficialTimeout) {
		p.TimeoutTeam = model.OfficialTimeout
	}
	return p, true
}

// captures maps the named groups that took part in a match to their text.
type captures map[string]string

func match(re *regexp.Regexp, s string) (captures, bool) {
	idx := re.FindStringSubmatchIndex(s)
	if idx == nil {
		return nil, false
	}
	c := make(captures)
	for i, name := range re.SubexpNames() {
		if name == "" || idx[2*i] < 0 {
			continue
		}
		c[name] = s[idx[2*i]:idx[2*i+1]]
	}
	return c, true
}

func (c captures) has(name string) bool {
	v, ok := c[name]
	return ok && v != ""
}

func (c captures) get(name string) string { return c[name] }

func (c captures) is(name, want string) bool { return strings.EqualFold(c[name], want) }

func (c captures) opt(name string) *string {
	if !c.has(name) {
		return nil
	}
	v := c[name]
	return &v
}

// actor returns a player id, normalising the provider's "Team" token.
func (c captures) actor(name string) string {
	v := c[name]
	if strings.EqualFold(v, model.TeamActor) {
		return model.TeamActor
	}
	return v
}

// intOr parses a numeric capture, falling back to def when it is absent
// or not a number.
func (c captures) intOr(name string, def int) int {
	n, err := strconv.Atoi(c[name])
	if err != nil {
		return def
	}
	return n
}

func (c captures) optInt(name string) *int {
	n, err := strconv.Atoi(c[name])
	if err != nil {
		return nil
	}
	return &n
}

func (c captures) participants() model.FoulParticipants {
	return model.FoulParticipants{Fouler: c.get("fouler"), Drawer: c.opt("drawer")}
}
