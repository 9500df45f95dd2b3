package prom

import (
	"gfx.cafe/open/gotoprom"
	"github.com/prometheus/client_golang/prometheus"
)

type GuildLabels struct {
	Guild string `label:"guild"`
}

type QuestLabels struct {
	Guild string `label:"guild"`
	State string `label:"state"`
}

var Quest struct {
	Submitted func(GuildLabels) prometheus.Counter   `name:"submitted" help:"quests submitted"`
	Resolved  func(QuestLabels) prometheus.Counter   `name:"resolved" help:"quest resolutions by state"`
	Requeued  func(GuildLabels) prometheus.Counter   `name:"requeued" help:"quests requeued after losing their mercenary"`
	Pending   func(GuildLabels) prometheus.Gauge     `name:"pending" help:"quests waiting for a mercenary"`
	Wait      func(GuildLabels) prometheus.Histogram `name:"wait_ms" buckets:"0.005,0.01,0.1,0.5,1,5,10,100,500,1000,5000,30000,60000" help:"ms from submission to assignment"`
}

type MercenaryLabels struct {
	Guild string `label:"guild"`
	State string `label:"state"`
}

var Mercenary struct {
	Current func(MercenaryLabels) prometheus.Gauge `name:"current" help:"registered mercenaries by state"`
}

type SessionLabels struct {
	Transport string `label:"transport"`
}

var Session struct {
	Accepted func(SessionLabels) prometheus.Counter `name:"accepted" help:"receptionist sessions accepted"`
	Current  func(SessionLabels) prometheus.Gauge   `name:"current" help:"current receptionist sessions"`
	Requests func(SessionLabels) prometheus.Counter `name:"requests" help:"request details received"`
}

type BoardLabels struct {
	Guild string `label:"guild"`
}

var Board struct {
	Announced   func(BoardLabels) prometheus.Counter `name:"announced" help:"quest acknowledgements announced"`
	Dropped     func(BoardLabels) prometheus.Counter `name:"dropped" help:"acknowledgements and quests dropped for slow subscribers"`
	Subscribers func(BoardLabels) prometheus.Gauge   `name:"subscribers" help:"current board subscribers"`
	Posted      func(BoardLabels) prometheus.Counter `name:"posted" help:"quests posted to their mercenaries"`
	Unclaimed   func(BoardLabels) prometheus.Counter `name:"unclaimed" help:"quests posted to mercenaries nobody was following"`
	Followers   func(BoardLabels) prometheus.Gauge   `name:"followers" help:"current per mercenary followers"`
}

func init() {
	gotoprom.MustInit(&Quest, "guild_quest", prometheus.Labels{})
	gotoprom.MustInit(&Mercenary, "guild_mercenary", prometheus.Labels{})
	gotoprom.MustInit(&Session, "guild_session", prometheus.Labels{})
	gotoprom.MustInit(&Board, "guild_board", prometheus.Labels{})
}
