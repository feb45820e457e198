/*
Package netbreak holds a number of application level constants and shared
resources for the network-breaking cascade simulation and its launcher.
*/
package netbreak

// BuildRevision stores the commit in the git repository at build time and is
// specified with -ldflags at build time.
var BuildRevision = ""

const (
	// WorkersEnvVar carries the number of cores allocated to a launched
	// run down to the sweep that sizes its worker pool from it.
	WorkersEnvVar = "NETBREAK_WORKERS"

	QueueName        = "netbreak.replicates"
	RecordCollection = "replicates"

	defaultQueueCapacity = 4096
)
