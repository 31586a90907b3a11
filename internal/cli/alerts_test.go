package cli

import (
	"fmt"
	"testing"
	"time"

	"github.com/rileyhilliard/vitals/internal/errors"
	"github.com/rileyhilliard/vitals/internal/ledger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShortID(t *testing.T) {
	tests := []struct {
		name string
		id   string
		want string
	}{
		{
			name: "shorter than table width",
			id:   "3f2a",
			want: "3f2a",
		},
		{
			name: "exactly table width",
			id:   "3f2a91bc",
			want: "3f2a91bc",
		},
		{
			name: "full uuid truncated",
			id:   "3f2a91bc-7e41-4c8a-9d3f-1a2b3c4d5e6f",
			want: "3f2a91bc",
		},
		{
			name: "empty id",
			id:   "",
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, shortID(tt.id))
		})
	}
}

func TestFormatAge(t *testing.T) {
	tests := []struct {
		age  time.Duration
		want string
	}{
		{5 * time.Second, "5s"},
		{59 * time.Second, "59s"},
		{90 * time.Second, "1m"},
		{59 * time.Minute, "59m"},
		{3 * time.Hour, "3h"},
		{23 * time.Hour, "23h"},
		{25 * time.Hour, "1d"},
		{72 * time.Hour, "3d"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, formatAge(tt.age))
		})
	}
}

func TestStatusCell(t *testing.T) {
	tests := []struct {
		name  string
		entry ledger.Entry
		want  string
	}{
		{
			name:  "active",
			entry: ledger.Entry{Status: ledger.StatusActive},
			want:  "active",
		},
		{
			name:  "resolved",
			entry: ledger.Entry{Status: ledger.StatusResolved},
			want:  "resolved",
		},
		{
			name: "acknowledged shows who",
			entry: ledger.Entry{
				Status:         ledger.StatusAcknowledged,
				AcknowledgedBy: "riley",
			},
			want: "ack:riley",
		},
		{
			name: "long acknowledger truncated",
			entry: ledger.Entry{
				Status:         ledger.StatusAcknowledged,
				AcknowledgedBy: "ops-oncall",
			},
			want: "ack:ops-onc…",
		},
		{
			name:  "acknowledged without name falls back to status",
			entry: ledger.Entry{Status: ledger.StatusAcknowledged},
			want:  "acknowledged",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, statusCell(tt.entry))
		})
	}
}

func TestWrapLedgerErr_PassesThroughStructured(t *testing.T) {
	orig := errors.New(errors.ErrLedger, "No alert matches \"ab\"", "Run 'vitals alerts history'.")

	got := wrapLedgerErr(orig)

	assert.Same(t, orig, got, "structured ledger errors should pass through unchanged")
}

func TestWrapLedgerErr_WrapsPlainError(t *testing.T) {
	plain := fmt.Errorf("database disk image is malformed")

	got := wrapLedgerErr(plain)

	require.Error(t, got)
	assert.True(t, errors.IsCode(got, errors.ErrLedger))

	vErr, ok := errors.AsError(got)
	require.True(t, ok)
	assert.Equal(t, "Alert ledger query failed", vErr.Message)
	assert.ErrorIs(t, got, plain, "the cause should stay in the chain")
}
