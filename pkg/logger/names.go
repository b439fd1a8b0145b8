package logger

const (
	Main    = "main"
	NDisc   = "ndisc"
	Daemon  = "daemond"
	Events  = "events"
	Metrics = "metrics"
	Config  = "config"
)
