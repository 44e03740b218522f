package pipeline

import (
	"context"
	"fmt"

	"github.com/icsfix/icsfix/internal/model"
	"github.com/icsfix/icsfix/internal/relay"
	"github.com/icsfix/icsfix/internal/tzdata"
)

// AdmissionStep validates the caller-supplied URL before any I/O.
type AdmissionStep struct{}

// NewAdmissionStep creates the admission step.
func NewAdmissionStep() *AdmissionStep {
	return &AdmissionStep{}
}

// Name returns the step name.
func (s *AdmissionStep) Name() string {
	return "admission"
}

// Do validates the report's source URL.
func (s *AdmissionStep) Do(_ context.Context, report *model.RelayReport) error {
	return relay.ValidateURL(report.SourceURL)
}

// SniffStep probes the resource's leading bytes for the calendar marker
// before the relay commits to a full download.
type SniffStep struct {
	sniffer *relay.Sniffer
}

// NewSniffStep creates the sniff step around a configured Sniffer.
func NewSniffStep(sniffer *relay.Sniffer) *SniffStep {
	return &SniffStep{sniffer: sniffer}
}

// Name returns the step name.
func (s *SniffStep) Name() string {
	return "sniff"
}

// Do probes the source URL.
func (s *SniffStep) Do(ctx context.Context, report *model.RelayReport) error {
	return s.sniffer.Sniff(ctx, report.SourceURL)
}

// FetchStep downloads the full document under the size ceiling and
// records the decoded text on the report.
type FetchStep struct {
	fetcher *relay.Fetcher
}

// NewFetchStep creates the fetch step around a configured Fetcher.
func NewFetchStep(fetcher *relay.Fetcher) *FetchStep {
	return &FetchStep{fetcher: fetcher}
}

// Name returns the step name.
func (s *FetchStep) Name() string {
	return "fetch"
}

// Do downloads the document.
func (s *FetchStep) Do(ctx context.Context, report *model.RelayReport) error {
	doc, size, err := s.fetcher.Fetch(ctx, report.SourceURL)
	if err != nil {
		return err
	}
	report.Document = doc
	report.BytesFetched = size
	return nil
}

// InjectStep splices the shared timezone block into the fetched
// document. The block is the only state shared across requests; it is
// immutable after startup, so concurrent injections need no locking.
type InjectStep struct {
	block *tzdata.Block
}

// NewInjectStep creates the inject step around the loaded block.
func NewInjectStep(block *tzdata.Block) *InjectStep {
	return &InjectStep{block: block}
}

// Name returns the step name.
func (s *InjectStep) Name() string {
	return "inject"
}

// Do injects the timezone block into the report's document.
func (s *InjectStep) Do(_ context.Context, report *model.RelayReport) error {
	if s.block == nil {
		return fmt.Errorf("%w: no block configured", relay.ErrTimezoneDataUnavailable)
	}
	modified, err := relay.Inject(report.Document, s.block.Text())
	if err != nil {
		return err
	}
	report.ModifiedDocument = modified
	return nil
}
