package cli

import (
	"io"
	"os"
	"sync"

	"github.com/schollz/progressbar/v3"

	"github.com/law-makers/encuestas/internal/app"
	"github.com/law-makers/encuestas/internal/pipeline"
	"github.com/law-makers/encuestas/internal/ui"
)

// loadProgress draws one bar per variant as its load batches commit
type loadProgress struct {
	mu   sync.Mutex
	out  io.Writer
	bars map[pipeline.Variant]*progressbar.ProgressBar
}

func newLoadProgress(out io.Writer) *loadProgress {
	return &loadProgress{out: out, bars: make(map[pipeline.Variant]*progressbar.ProgressBar)}
}

func (p *loadProgress) update(v pipeline.Variant, written, total int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	bar, ok := p.bars[v]
	if !ok {
		bar = progressbar.NewOptions(total,
			progressbar.OptionSetWriter(p.out),
			progressbar.OptionSetDescription("Loading "+string(v)),
			progressbar.OptionShowCount(),
			progressbar.OptionSetWidth(30),
			progressbar.OptionClearOnFinish(),
		)
		p.bars[v] = bar
	}
	_ = bar.Set(written)
	if written >= total {
		_ = bar.Finish()
	}
}

// attachProgress enables load bars on interactive, non-quiet runs
func attachProgress(a *app.Application) {
	if a.Config.Quiet || a.Config.JSONLog || !ui.IsTerminal(os.Stderr) {
		return
	}
	a.SetProgress(newLoadProgress(os.Stderr).update)
}
