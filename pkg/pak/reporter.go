package pak

import "fmt"

// Reporter receives progress and log output from Pack/Extract operations.
// A nil Reporter is never passed to callers; NewPacker and ExtractAll fall
// back to a reporter that discards everything when none is given.
type Reporter interface {
	Status(msg string)
	Progress(done, total int)
	Logf(format string, args ...interface{})
}

// nopReporter discards everything.
type nopReporter struct{}

func (nopReporter) Status(string)               {}
func (nopReporter) Progress(int, int)           {}
func (nopReporter) Logf(string, ...interface{}) {}

// StdReporter prints status and progress to stdout, matching the teacher's
// plain fmt.Printf progress style.
type StdReporter struct{}

func (StdReporter) Status(msg string) {
	fmt.Println(msg)
}

func (StdReporter) Progress(done, total int) {
	fmt.Printf("%d/%d\n", done, total)
}

func (StdReporter) Logf(format string, args ...interface{}) {
	fmt.Printf(format+"\n", args...)
}
