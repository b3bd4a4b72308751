package grpc

import (
	"context"
	"errors"
	"testing"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	mdwerror "github.com/msto63/bayan/foundation/core/error"
	mdwlog "github.com/msto63/bayan/foundation/core/log"
)

var testInfo = &grpc.UnaryServerInfo{FullMethod: "/bayan.v1.Runner/Run"}

func TestStatusCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want codes.Code
	}{
		{"nil", nil, codes.OK},
		{"syntax", mdwerror.New("bad").WithCode(mdwerror.CodeSyntax), codes.InvalidArgument},
		{"compile", mdwerror.New("bad").WithCode(mdwerror.CodeCompile), codes.InvalidArgument},
		{"timeout", mdwerror.New("slow").WithCode(mdwerror.CodeTimeout), codes.DeadlineExceeded},
		{"canceled context", context.Canceled, codes.Canceled},
		{"runtime", mdwerror.New("boom").WithCode(mdwerror.CodeRuntime), codes.Internal},
		{"plain", errors.New("plain"), codes.Internal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := StatusCode(tt.err); got != tt.want {
				t.Errorf("StatusCode() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestErrorInterceptor(t *testing.T) {
	interceptor := ErrorInterceptor()

	_, err := interceptor(context.Background(), nil, testInfo, func(ctx context.Context, req interface{}) (interface{}, error) {
		return nil, mdwerror.New("unexpected token").WithCode(mdwerror.CodeSyntax)
	})
	if st, ok := status.FromError(err); !ok || st.Code() != codes.InvalidArgument {
		t.Errorf("Expected InvalidArgument status, got %v", err)
	}

	// status errors pass through untouched
	_, err = interceptor(context.Background(), nil, testInfo, func(ctx context.Context, req interface{}) (interface{}, error) {
		return nil, status.Error(codes.PermissionDenied, "no")
	})
	if status.Code(err) != codes.PermissionDenied {
		t.Errorf("Expected PermissionDenied, got %v", err)
	}
}

func TestRecoveryInterceptor(t *testing.T) {
	interceptor := RecoveryInterceptor(mdwlog.Discard())
	_, err := interceptor(context.Background(), nil, testInfo, func(ctx context.Context, req interface{}) (interface{}, error) {
		panic("handler exploded")
	})
	if status.Code(err) != codes.Internal {
		t.Errorf("Expected Internal after panic, got %v", err)
	}
}

func TestRequestIDInterceptor(t *testing.T) {
	interceptor := RequestIDInterceptor()

	tests := []struct {
		name  string
		ctx   context.Context
		check func(t *testing.T, id string)
	}{
		{
			name: "generated",
			ctx:  context.Background(),
			check: func(t *testing.T, id string) {
				if len(id) != 36 {
					t.Errorf("Expected a generated uuid, got %q", id)
				}
			},
		},
		{
			name: "propagated from metadata",
			ctx:  metadata.NewIncomingContext(context.Background(), metadata.Pairs(RequestIDHeader, "req-42")),
			check: func(t *testing.T, id string) {
				if id != "req-42" {
					t.Errorf("Request ID = %q, want req-42", id)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var seen string
			_, err := interceptor(tt.ctx, nil, testInfo, func(ctx context.Context, req interface{}) (interface{}, error) {
				seen = GetRequestID(ctx)
				return nil, nil
			})
			if err != nil {
				t.Fatalf("Interceptor failed: %v", err)
			}
			tt.check(t, seen)
		})
	}
}

func TestServer_Health(t *testing.T) {
	cfg := DefaultServerConfig("127.0.0.1:0")
	cfg.Logger = mdwlog.Discard()
	srv := NewServer(cfg)
	if err := srv.StartAsync(); err != nil {
		t.Fatalf("StartAsync failed: %v", err)
	}
	defer srv.Stop()

	clientCfg := DefaultClientConfig(srv.Address())
	clientCfg.Logger = mdwlog.Discard()
	conn, err := Dial(clientCfg)
	if err != nil {
		t.Fatalf("Dial failed: %v", err)
	}
	defer conn.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := WaitServing(ctx, conn); err != nil {
		t.Fatalf("WaitServing failed: %v", err)
	}
}
