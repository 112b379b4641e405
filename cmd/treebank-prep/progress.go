package main

import (
	"io"
	"path/filepath"

	"github.com/gosuri/uiprogress"
)

// loadBars shows one progress bar per loaded corpus directory. A nil
// *loadBars is disabled.
type loadBars struct {
	progress *uiprogress.Progress
	bar      *uiprogress.Bar
	started  bool
}

func newLoadBars(enabled bool, w io.Writer) *loadBars {
	if !enabled {
		return nil
	}
	p := uiprogress.New()
	p.Out = w
	return &loadBars{progress: p}
}

// update matches the corpus progress callback. A new bar, labelled with the
// directory being read, starts whenever a load begins again from its first
// file.
func (b *loadBars) update(done, total int, name string) {
	if b == nil {
		return
	}
	if !b.started {
		b.progress.Start()
		b.started = true
	}
	if b.bar == nil || done == 1 {
		label := filepath.Base(filepath.Dir(name))
		b.bar = b.progress.AddBar(total).AppendCompleted().PrependElapsed()
		b.bar.PrependFunc(func(*uiprogress.Bar) string { return label })
	}
	_ = b.bar.Set(done)
}

func (b *loadBars) stop() {
	if b == nil || !b.started {
		return
	}
	b.progress.Stop()
	b.started = false
}
