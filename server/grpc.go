// Package server exposes a Service over grpc. The service descriptor is
// written by hand and the messages travel as JSON, so no generated code
// is involved; both ends share the wire package structs.
package server

import (
	"context"

	"google.golang.org/grpc"

	"github.com/kndndrj/datasink/wire"
)

// ServiceName is the full grpc service name clients dial.
const ServiceName = "datasink.DataSink"

// DataSinkServer is the handler set of the DataSink service.
type DataSinkServer interface {
	CreateTable(context.Context, *wire.CreateTableRequest) (*wire.CreateTableResponse, error)
	DropTable(context.Context, *wire.DropTableRequest) (*wire.DropTableResponse, error)
	Insert(context.Context, *wire.InsertRequest) (*wire.InsertResponse, error)
	Update(context.Context, *wire.UpdateRequest) (*wire.UpdateResponse, error)
	Delete(context.Context, *wire.DeleteRequest) (*wire.DeleteResponse, error)
	BatchInsert(context.Context, *wire.BatchInsertRequest) (*wire.BatchInsertResponse, error)
	Query(*wire.QueryRequest, DataSinkQueryServer) error
	GetServerStatus(context.Context, *wire.ServerStatusRequest) (*wire.ServerStatusResponse, error)
	AddDatabase(context.Context, *wire.AddDatabaseRequest) (*wire.AddDatabaseResponse, error)
}

// DataSinkQueryServer is the server side of the Query stream.
type DataSinkQueryServer interface {
	Send(*wire.QueryResponse) error
	grpc.ServerStream
}

type dataSinkQueryServer struct {
	grpc.ServerStream
}

func (s *dataSinkQueryServer) Send(resp *wire.QueryResponse) error {
	return s.ServerStream.SendMsg(resp)
}

// RegisterDataSinkServer registers srv under the DataSink service
// descriptor.
func RegisterDataSinkServer(s *grpc.Server, srv DataSinkServer) {
	s.RegisterService(&grpc.ServiceDesc{
		ServiceName: ServiceName,
		HandlerType: (*DataSinkServer)(nil),
		Methods: []grpc.MethodDesc{
			{MethodName: "CreateTable", Handler: createTableHandler},
			{MethodName: "DropTable", Handler: dropTableHandler},
			{MethodName: "Insert", Handler: insertHandler},
			{MethodName: "Update", Handler: updateHandler},
			{MethodName: "Delete", Handler: deleteHandler},
			{MethodName: "BatchInsert", Handler: batchInsertHandler},
			{MethodName: "GetServerStatus", Handler: getServerStatusHandler},
			{MethodName: "AddDatabase", Handler: addDatabaseHandler},
		},
		Streams: []grpc.StreamDesc{
			{StreamName: "Query", Handler: queryHandler, ServerStreams: true},
		},
		Metadata: "datasink",
	}, srv)
}

func createTableHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(wire.CreateTableRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(DataSinkServer).CreateTable(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + ServiceName + "/CreateTable"}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(DataSinkServer).CreateTable(ctx, req.(*wire.CreateTableRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func dropTableHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(wire.DropTableRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(DataSinkServer).DropTable(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + ServiceName + "/DropTable"}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(DataSinkServer).DropTable(ctx, req.(*wire.DropTableRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func insertHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(wire.InsertRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(DataSinkServer).Insert(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + ServiceName + "/Insert"}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(DataSinkServer).Insert(ctx, req.(*wire.InsertRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func updateHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(wire.UpdateRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(DataSinkServer).Update(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + ServiceName + "/Update"}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(DataSinkServer).Update(ctx, req.(*wire.UpdateRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func deleteHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(wire.DeleteRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(DataSinkServer).Delete(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + ServiceName + "/Delete"}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(DataSinkServer).Delete(ctx, req.(*wire.DeleteRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func batchInsertHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(wire.BatchInsertRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(DataSinkServer).BatchInsert(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + ServiceName + "/BatchInsert"}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(DataSinkServer).BatchInsert(ctx, req.(*wire.BatchInsertRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func getServerStatusHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(wire.ServerStatusRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(DataSinkServer).GetServerStatus(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + ServiceName + "/GetServerStatus"}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(DataSinkServer).GetServerStatus(ctx, req.(*wire.ServerStatusRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func addDatabaseHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(wire.AddDatabaseRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(DataSinkServer).AddDatabase(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + ServiceName + "/AddDatabase"}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(DataSinkServer).AddDatabase(ctx, req.(*wire.AddDatabaseRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func queryHandler(srv any, stream grpc.ServerStream) error {
	in := new(wire.QueryRequest)
	if err := stream.RecvMsg(in); err != nil {
		return err
	}
	return srv.(DataSinkServer).Query(in, &dataSinkQueryServer{stream})
}
