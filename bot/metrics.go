package bot

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var commandsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "rumia_commands_total",
	Help: "Slash command invocations by command name and outcome.",
}, []string{"command", "status"})
