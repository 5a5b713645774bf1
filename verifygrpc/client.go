package verifygrpc

import (
	"context"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"xdao.co/certverify/verify"
)

// Client calls a remote Verifier service.
type Client struct {
	cc     *grpc.ClientConn
	client VerifierClient

	// Timeout applies per RPC when non-zero.
	Timeout time.Duration
}

type DialOptions struct {
	// Timeout applies to the initial dial when non-zero.
	Timeout time.Duration

	// MaxMsgBytes sets both send/recv max sizes when non-zero. Submitted
	// documents travel inline, so this bounds accepted document size.
	MaxMsgBytes int
}

func Dial(target string, opts DialOptions) (*Client, error) {
	dialOpts := []grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	}
	if opts.MaxMsgBytes > 0 {
		dialOpts = append(dialOpts,
			grpc.WithDefaultCallOptions(
				grpc.MaxCallRecvMsgSize(opts.MaxMsgBytes),
				grpc.MaxCallSendMsgSize(opts.MaxMsgBytes),
			),
		)
	}

	ctx := context.Background()
	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}

	cc, err := grpc.DialContext(ctx, target, dialOpts...)
	if err != nil {
		return nil, err
	}
	return &Client{cc: cc, client: NewVerifierClient(cc), Timeout: 0}, nil
}

func (c *Client) Close() error {
	if c == nil || c.cc == nil {
		return nil
	}
	return c.cc.Close()
}

// Verify submits document bytes and returns the engine's result.
func (c *Client) Verify(raw []byte) (verify.Result, error) {
	ctx, cancel := c.ctx()
	defer cancel()

	reply, err := c.client.Verify(ctx, wrapperspb.Bytes(raw))
	if err != nil {
		return verify.Result{}, mapRPC(err)
	}
	fields := reply.GetFields()
	return verify.Result{
		Verdict:   verify.Verdict(fields["Result"].GetStringValue()),
		LocatorID: fields["IPFS_file_hash"].GetStringValue(),
		Anchored:  fields["Anchored"].GetBoolValue(),
	}, nil
}

// Anchor writes the document's fingerprints to the ledger and returns the
// transaction id.
func (c *Client) Anchor(raw []byte) (string, error) {
	ctx, cancel := c.ctx()
	defer cancel()

	reply, err := c.client.Anchor(ctx, wrapperspb.Bytes(raw))
	if err != nil {
		return "", mapRPC(err)
	}
	return reply.GetValue(), nil
}

// Anchored reports whether the given fingerprint appears under key in the
// ledger history.
func (c *Client) Anchored(key, value string) (bool, error) {
	in, err := structpb.NewStruct(map[string]interface{}{
		"key":   key,
		"value": value,
	})
	if err != nil {
		return false, err
	}

	ctx, cancel := c.ctx()
	defer cancel()

	reply, err := c.client.Anchored(ctx, in)
	if err != nil {
		return false, mapRPC(err)
	}
	return reply.GetValue(), nil
}

func (c *Client) ctx() (context.Context, context.CancelFunc) {
	if c.Timeout <= 0 {
		return context.WithCancel(context.Background())
	}
	return context.WithTimeout(context.Background(), c.Timeout)
}
