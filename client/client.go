// Package client is a typed grpc client for the DataSink service. It
// speaks the same hand-written JSON protocol as the server package.
package client

import (
	"context"
	"errors"
	"io"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/kndndrj/datasink/core"
	"github.com/kndndrj/datasink/wire"
)

const servicePath = "/datasink.DataSink/"

var queryStreamDesc = &grpc.StreamDesc{
	StreamName:    "Query",
	ServerStreams: true,
}

type Client struct {
	conn *grpc.ClientConn
}

// New dials addr without transport security. The connection is lazy;
// the first call performs the actual connect.
func New(addr string, opts ...grpc.DialOption) (*Client, error) {
	opts = append([]grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithDefaultCallOptions(grpc.ForceCodec(wire.Codec{})),
	}, opts...)

	conn, err := grpc.NewClient(addr, opts...)
	if err != nil {
		return nil, err
	}
	return &Client{conn: conn}, nil
}

func (c *Client) Close() error {
	return c.conn.Close()
}

func (c *Client) invoke(ctx context.Context, method string, req, resp any) error {
	return c.conn.Invoke(ctx, servicePath+method, req, resp)
}

func (c *Client) CreateTable(ctx context.Context, req *wire.CreateTableRequest) (*wire.CreateTableResponse, error) {
	resp := new(wire.CreateTableResponse)
	if err := c.invoke(ctx, "CreateTable", req, resp); err != nil {
		return nil, err
	}
	return resp, nil
}

func (c *Client) DropTable(ctx context.Context, req *wire.DropTableRequest) (*wire.DropTableResponse, error) {
	resp := new(wire.DropTableResponse)
	if err := c.invoke(ctx, "DropTable", req, resp); err != nil {
		return nil, err
	}
	return resp, nil
}

func (c *Client) Insert(ctx context.Context, req *wire.InsertRequest) (*wire.InsertResponse, error) {
	resp := new(wire.InsertResponse)
	if err := c.invoke(ctx, "Insert", req, resp); err != nil {
		return nil, err
	}
	return resp, nil
}

func (c *Client) Update(ctx context.Context, req *wire.UpdateRequest) (*wire.UpdateResponse, error) {
	resp := new(wire.UpdateResponse)
	if err := c.invoke(ctx, "Update", req, resp); err != nil {
		return nil, err
	}
	return resp, nil
}

func (c *Client) Delete(ctx context.Context, req *wire.DeleteRequest) (*wire.DeleteResponse, error) {
	resp := new(wire.DeleteResponse)
	if err := c.invoke(ctx, "Delete", req, resp); err != nil {
		return nil, err
	}
	return resp, nil
}

func (c *Client) BatchInsert(ctx context.Context, req *wire.BatchInsertRequest) (*wire.BatchInsertResponse, error) {
	resp := new(wire.BatchInsertResponse)
	if err := c.invoke(ctx, "BatchInsert", req, resp); err != nil {
		return nil, err
	}
	return resp, nil
}

func (c *Client) GetServerStatus(ctx context.Context, req *wire.ServerStatusRequest) (*wire.ServerStatusResponse, error) {
	resp := new(wire.ServerStatusResponse)
	if err := c.invoke(ctx, "GetServerStatus", req, resp); err != nil {
		return nil, err
	}
	return resp, nil
}

func (c *Client) AddDatabase(ctx context.Context, req *wire.AddDatabaseRequest) (*wire.AddDatabaseResponse, error) {
	resp := new(wire.AddDatabaseResponse)
	if err := c.invoke(ctx, "AddDatabase", req, resp); err != nil {
		return nil, err
	}
	return resp, nil
}

// QueryStream is the client side of a running query.
type QueryStream struct {
	stream grpc.ClientStream
}

// Recv returns the next stream message. io.EOF marks a clean end.
func (s *QueryStream) Recv() (*wire.QueryResponse, error) {
	resp := new(wire.QueryResponse)
	if err := s.stream.RecvMsg(resp); err != nil {
		return nil, err
	}
	return resp, nil
}

// Query starts a streaming query. Messages follow the stream protocol:
// a column descriptor first, then one row per message, optionally
// terminated by an in-band error.
func (c *Client) Query(ctx context.Context, req *wire.QueryRequest) (*QueryStream, error) {
	stream, err := c.conn.NewStream(ctx, queryStreamDesc, servicePath+"Query")
	if err != nil {
		return nil, err
	}
	if err := stream.SendMsg(req); err != nil {
		return nil, err
	}
	if err := stream.CloseSend(); err != nil {
		return nil, err
	}
	return &QueryStream{stream: stream}, nil
}

// QueryCollect runs a query and materializes the whole result. An
// in-band stream error comes back as the call error.
func (c *Client) QueryCollect(ctx context.Context, req *wire.QueryRequest) (*core.QueryResult, error) {
	stream, err := c.Query(ctx, req)
	if err != nil {
		return nil, err
	}

	first, err := stream.Recv()
	if err != nil {
		return nil, err
	}
	if first.Error != nil {
		return nil, core.NewErrorf(core.ErrorInternal, "%s: %s", first.Error.Code, first.Error.Message)
	}
	if first.ResultSet == nil {
		return nil, core.NewError(core.ErrorInternal, "stream did not start with a column descriptor")
	}

	result := &core.QueryResult{Columns: wire.ToColumns(first.ResultSet.Columns)}

	for {
		resp, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			return result, nil
		}
		if err != nil {
			return nil, err
		}
		if resp.Error != nil {
			return nil, core.NewErrorf(core.ErrorInternal, "%s: %s", resp.Error.Code, resp.Error.Message)
		}
		for _, row := range resp.ResultSet.Rows {
			result.Rows = append(result.Rows, wire.ToRow(row))
		}
	}
}
