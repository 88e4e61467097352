package cfg

type Cfg struct {
	// Database configuration
	DBPath string

	// Application configuration
	Port              string
	WorkerCount       int
	SchedulerInterval int
	APIAccessKey      string
	ScheduleFile      string
	CacheTTL          int

	// Calendar configuration
	ReferenceOffset int    // hours east of UTC
	RunDate         string // YYYY-MM-DD override for "today"

	// Verification service
	VerifierURL    string
	VerifierAPIKey string
	VerifierRate   float64

	// Application metadata
	UserAgent string
	Timezone  string
	Debug     bool
	Version   string
}
