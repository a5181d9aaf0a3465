package config

// Build metadata, set with -ldflags "-X InvestmentDashboard/internal/config.Version=...".
var (
	Version   = "dev"
	Commit    = "none"
	BuildDate = "unknown"
)
