package render

// Reporter receives render lifecycle notifications. Calls come from the
// goroutine running Render and must not call back into the Controller.
type Reporter interface {
	RenderStarted(mode Mode, generation uint64)
	// RenderFailed is called exactly once for each failed render that was
	// not superseded.
	RenderFailed(mode Mode, err error)
	RenderFinished(res *Result)
	DownloadAvailable(ok bool)
}

// NopReporter ignores all notifications.
type NopReporter struct{}

func (NopReporter) RenderStarted(Mode, uint64) {}
func (NopReporter) RenderFailed(Mode, error) {}
func (NopReporter) RenderFinished(*Result) {}
func (NopReporter) DownloadAvailable(ok bool) {}
