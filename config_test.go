package forwarded

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

type testTypedNilMetrics struct{}

func (*testTypedNilMetrics) RecordResolution(string, string) {}

func (*testTypedNilMetrics) RecordSecurityEvent(string) {}

type testTypedNilLogger struct{}

func (*testTypedNilLogger) WarnContext(_ context.Context, _ string, _ ...any) {}

func TestNew_TrustPolicySelection(t *testing.T) {
	depth2, _ := DepthPolicy(2)
	allowlist, _ := AllowlistPolicy("10.0.0.2", "10.0.0.1")

	tests := []struct {
		name      string
		opts      []Option
		wantKind  PolicyKind
		wantDepth int
		wantIDs   []string
		wantErr   error
	}{
		{
			name:    "no policy",
			opts:    nil,
			wantErr: ErrNoTrustPolicy,
		},
		{
			name:    "both policies",
			opts:    []Option{TrustedDepth(1), TrustedProxies("10.0.0.1")},
			wantErr: ErrConflictingTrustPolicy,
		},
		{
			name:    "zero depth",
			opts:    []Option{TrustedDepth(0)},
			wantErr: ErrInvalidDepth,
		},
		{
			name:    "negative depth",
			opts:    []Option{TrustedDepth(-3)},
			wantErr: ErrInvalidDepth,
		},
		{
			name:    "blank identity",
			opts:    []Option{TrustedProxies("10.0.0.1", "")},
			wantErr: ErrInvalidProxyIdentity,
		},
		{
			name:      "depth",
			opts:      []Option{TrustedDepth(3)},
			wantKind:  PolicyDepth,
			wantDepth: 3,
		},
		{
			name:      "last depth wins",
			opts:      []Option{TrustedDepth(3), TrustedDepth(1)},
			wantKind:  PolicyDepth,
			wantDepth: 1,
		},
		{
			name:     "allowlist",
			opts:     []Option{TrustedProxies("10.0.0.1", "2001:db8::1")},
			wantKind: PolicyAllowlist,
			wantIDs:  []string{"10.0.0.1", "2001:db8::1"},
		},
		{
			name:     "empty allowlist",
			opts:     []Option{TrustedProxies()},
			wantKind: PolicyAllowlist,
		},
		{
			name:      "prebuilt depth policy",
			opts:      []Option{WithPolicy(depth2)},
			wantKind:  PolicyDepth,
			wantDepth: 2,
		},
		{
			name:     "prebuilt allowlist policy",
			opts:     []Option{WithPolicy(allowlist)},
			wantKind: PolicyAllowlist,
			wantIDs:  []string{"10.0.0.1", "10.0.0.2"},
		},
		{
			name:    "prebuilt policies conflict",
			opts:    []Option{WithPolicy(depth2), WithPolicy(allowlist)},
			wantErr: ErrConflictingTrustPolicy,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resolver, err := New(tt.opts...)

			if tt.wantErr != nil {
				if !errorContains(err, tt.wantErr) {
					t.Fatalf("New() error = %v, want %v", err, tt.wantErr)
				}
				var configErr *ConfigError
				if !errors.As(err, &configErr) {
					t.Fatalf("New() error = %T, want *ConfigError in chain", err)
				}
				if !strings.HasPrefix(err.Error(), "invalid configuration: ") {
					t.Fatalf("New() error = %q, want invalid configuration prefix", err.Error())
				}
				return
			}

			if err != nil {
				t.Fatalf("New() error = %v", err)
			}

			policy := resolver.Policy()
			if policy.Kind() != tt.wantKind {
				t.Fatalf("policy kind = %v, want %v", policy.Kind(), tt.wantKind)
			}
			if policy.Depth() != tt.wantDepth {
				t.Errorf("policy depth = %d, want %d", policy.Depth(), tt.wantDepth)
			}
			if tt.wantKind == PolicyAllowlist {
				if diff := cmp.Diff(tt.wantIDs, allowlistIDs(policy.allowlist)); diff != "" {
					t.Errorf("allowlist mismatch (-want +got):\n%s", diff)
				}
			}
		})
	}
}

func TestNew_InvalidPrebuiltPolicy(t *testing.T) {
	_, err := New(WithPolicy(Policy{}))
	if err == nil {
		t.Fatal("New() with zero Policy succeeded")
	}
	if !strings.Contains(err.Error(), "invalid trust policy") {
		t.Fatalf("New() error = %q, want invalid trust policy", err.Error())
	}
}

func TestNew_ObservabilityValidation(t *testing.T) {
	tests := []struct {
		name    string
		opts    []Option
		wantErr string
	}{
		{
			name:    "nil logger",
			opts:    []Option{WithLogger(nil)},
			wantErr: "logger cannot be nil",
		},
		{
			name:    "typed nil logger",
			opts:    []Option{WithLogger((*testTypedNilLogger)(nil))},
			wantErr: "logger cannot be nil",
		},
		{
			name:    "nil metrics",
			opts:    []Option{WithMetrics(nil)},
			wantErr: "metrics cannot be nil",
		},
		{
			name:    "typed nil metrics",
			opts:    []Option{WithMetrics((*testTypedNilMetrics)(nil))},
			wantErr: "metrics cannot be nil",
		},
		{
			name:    "nil metrics factory",
			opts:    []Option{WithMetricsFactory(nil)},
			wantErr: "metrics factory cannot be nil",
		},
		{
			name: "factory returning typed nil",
			opts: []Option{WithMetricsFactory(func() (Metrics, error) {
				return (*testTypedNilMetrics)(nil), nil
			})},
			wantErr: "metrics cannot be nil",
		},
		{
			name:    "nil option",
			opts:    []Option{nil},
			wantErr: "option cannot be nil",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := append([]Option{TrustedDepth(1)}, tt.opts...)

			_, err := New(opts...)
			if err == nil {
				t.Fatal("New() error = nil, want error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("New() error = %q, want %q", err.Error(), tt.wantErr)
			}
		})
	}
}

func TestNew_MetricsFactory(t *testing.T) {
	t.Run("not invoked when configuration is invalid", func(t *testing.T) {
		calls := 0
		_, err := New(WithMetricsFactory(func() (Metrics, error) {
			calls++
			return newMockMetrics(), nil
		}))
		if !errorContains(err, ErrNoTrustPolicy) {
			t.Fatalf("New() error = %v, want ErrNoTrustPolicy", err)
		}
		if calls != 0 {
			t.Fatalf("factory calls = %d, want 0", calls)
		}
	})

	t.Run("factory error is returned", func(t *testing.T) {
		factoryErr := errors.New("factory failed")
		_, err := New(TrustedDepth(1), WithMetricsFactory(func() (Metrics, error) {
			return nil, factoryErr
		}))
		if !errors.Is(err, factoryErr) {
			t.Fatalf("New() error = %v, want factory error", err)
		}
	})

	t.Run("concrete metrics after factory wins", func(t *testing.T) {
		calls := 0
		metrics := newMockMetrics()
		resolver, err := New(
			TrustedDepth(1),
			WithMetricsFactory(func() (Metrics, error) {
				calls++
				return newMockMetrics(), nil
			}),
			WithMetrics(metrics),
		)
		if err != nil {
			t.Fatalf("New() error = %v", err)
		}
		if calls != 0 {
			t.Fatalf("factory calls = %d, want 0", calls)
		}

		resolver.Resolve("for=192.0.2.1", "10.0.0.1")
		if got := metrics.getResolutionCount("depth", ResultResolved); got != 1 {
			t.Fatalf("resolution count = %d, want 1", got)
		}
	})
}

func TestNew_SlogLoggerAccepted(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	if _, err := New(TrustedDepth(1), WithLogger(logger)); err != nil {
		t.Fatalf("New() error = %v", err)
	}
}

func TestTrustedProxies_CopiesInput(t *testing.T) {
	ids := []string{"10.0.0.1"}
	opt := TrustedProxies(ids...)
	ids[0] = "10.9.9.9"

	resolver := mustNewResolver(t, opt)
	if !resolver.Policy().Trusts("10.0.0.1") {
		t.Fatal("policy lost the configured identity")
	}
	if resolver.Policy().Trusts("10.9.9.9") {
		t.Fatal("policy observed mutation of the caller's slice")
	}
}

func TestConfigError_Error(t *testing.T) {
	tests := []struct {
		name string
		err  *ConfigError
		want string
	}{
		{
			name: "with value",
			err:  &ConfigError{Option: EnvTrustedProxyDepth, Value: "abc", Err: ErrInvalidDepth},
			want: `TRUSTED_PROXY_DEPTH: trusted proxy depth must be an integer >= 1 (value="abc")`,
		},
		{
			name: "without value",
			err:  &ConfigError{Option: "trust policy", Err: ErrNoTrustPolicy},
			want: "trust policy: " + ErrNoTrustPolicy.Error(),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
			if !errors.Is(tt.err, tt.err.Err) {
				t.Error("ConfigError does not unwrap to its cause")
			}
		})
	}
}
