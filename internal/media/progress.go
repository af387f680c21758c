package media

import "io"

// progressReader reports the percentage of total bytes consumed.
// Each percentage is reported at most once and 100 is always reported at EOF.
type progressReader struct {
	r        io.Reader
	total    int64
	read     int64
	last     int
	report   ProgressFunc
	finished bool
}

func newProgressReader(r io.Reader, total int64, report ProgressFunc) io.Reader {
	if report == nil {
		return r
	}
	return &progressReader{r: r, total: total, last: -1, report: report}
}

func (p *progressReader) Read(b []byte) (int, error) {
	n, err := p.r.Read(b)
	p.read += int64(n)

	if n > 0 && p.total > 0 {
		p.emit(int(p.read * 100 / p.total))
	}
	if err == io.EOF {
		p.emit(100)
	}
	return n, err
}

func (p *progressReader) emit(percent int) {
	if percent > 100 {
		percent = 100
	}
	if percent <= p.last || p.finished {
		return
	}
	p.last = percent
	p.finished = percent == 100
	p.report(percent)
}
