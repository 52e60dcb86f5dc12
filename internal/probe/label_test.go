package probe

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLabel(t *testing.T) {
	tests := []struct {
		in   string
		want Label
		segs int
	}{
		{"billing", Label{App: "billing"}, 1},
		{"billing.DBProbe", Label{App: "billing", Class: "DBProbe"}, 2},
		{"billing.DBProbe.test_ping", Label{App: "billing", Class: "DBProbe", Method: "test_ping"}, 3},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLabel(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.segs, got.Segments())
			assert.Equal(t, tt.in, got.String())
		})
	}
}

func TestParseLabel_Malformed(t *testing.T) {
	for _, in := range []string{"", "a.b.c.d", "a..c", ".b", "a."} {
		t.Run(in, func(t *testing.T) {
			_, err := ParseLabel(in)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrLabelFormat))

			var le *LabelError
			require.ErrorAs(t, err, &le)
			assert.Equal(t, in, le.Label)
			assert.Contains(t, err.Error(), "app.Probe.probe_method")
		})
	}
}
