package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetIsSingleton(t *testing.T) {
	require.Same(t, Get(), Get())
}

func TestInvocationCounter(t *testing.T) {
	r := Get()

	before := testutil.ToFloat64(r.InvocationsTotal.WithLabelValues("iptables", "wait", "ok"))
	r.InvocationsTotal.WithLabelValues("iptables", "wait", "ok").Inc()
	after := testutil.ToFloat64(r.InvocationsTotal.WithLabelValues("iptables", "wait", "ok"))

	assert.Equal(t, before+1, after)
}
