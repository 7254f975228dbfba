// Copyright 2023 gorse Project Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package progress

import (
	"io"
	"time"

	"github.com/juju/ratelimit"
	"github.com/schollz/progressbar/v3"
)

// Reporter receives progress of a long-running pass. total is negative when the
// amount of work is unknown.
type Reporter interface {
	Report(done, total int)
}

// Func adapts an ordinary function to a Reporter.
type Func func(done, total int)

func (f Func) Report(done, total int) {
	f(done, total)
}

// RateLimited forwards at most one report per interval to the wrapped reporter.
// The report that completes a pass (done == total) is always forwarded.
type RateLimited struct {
	reporter Reporter
	bucket   *ratelimit.Bucket
}

// NewRateLimited wraps a reporter with a token bucket refilled every interval. A
// non-positive interval disables limiting.
func NewRateLimited(reporter Reporter, interval time.Duration) *RateLimited {
	return newRateLimited(reporter, interval, nil)
}

func newRateLimited(reporter Reporter, interval time.Duration, clock ratelimit.Clock) *RateLimited {
	r := &RateLimited{reporter: reporter}
	if interval > 0 {
		if clock == nil {
			r.bucket = ratelimit.NewBucket(interval, 1)
		} else {
			r.bucket = ratelimit.NewBucketWithClock(interval, 1, clock)
		}
	}
	return r
}

func (r *RateLimited) Report(done, total int) {
	if r.bucket == nil || done == total || r.bucket.TakeAvailable(1) > 0 {
		r.reporter.Report(done, total)
	}
}

// Bar renders reports as a terminal progress bar.
type Bar struct {
	bar *progressbar.ProgressBar
}

// NewBar creates a progress bar writing to w. A negative total renders a spinner.
func NewBar(w io.Writer, description string, total int) *Bar {
	return &Bar{bar: progressbar.NewOptions(total,
		progressbar.OptionSetWriter(w),
		progressbar.OptionSetDescription(description),
		progressbar.OptionShowCount(),
		progressbar.OptionOnCompletion(func() { _, _ = io.WriteString(w, "\n") }),
	)}
}

func (b *Bar) Report(done, total int) {
	if total > 0 && b.bar.GetMax() != total {
		b.bar.ChangeMax(total)
	}
	_ = b.bar.Set(done)
}

// Finish fills the bar and moves the cursor to the next line.
func (b *Bar) Finish() error {
	return b.bar.Finish()
}
