package server

import (
	"context"
	"net"

	"github.com/sirupsen/logrus"
	"google.golang.org/grpc"

	"github.com/kndndrj/datasink/service"
	"github.com/kndndrj/datasink/wire"
)

// Server adapts a service to the grpc handler set, translating
// classified errors into transport status codes at the boundary.
type Server struct {
	svc *service.Service
}

func New(svc *service.Service) *Server {
	return &Server{svc: svc}
}

func (s *Server) CreateTable(ctx context.Context, req *wire.CreateTableRequest) (*wire.CreateTableResponse, error) {
	resp, err := s.svc.CreateTable(ctx, req)
	return resp, service.ToStatus(err)
}

func (s *Server) DropTable(ctx context.Context, req *wire.DropTableRequest) (*wire.DropTableResponse, error) {
	resp, err := s.svc.DropTable(ctx, req)
	return resp, service.ToStatus(err)
}

func (s *Server) Insert(ctx context.Context, req *wire.InsertRequest) (*wire.InsertResponse, error) {
	resp, err := s.svc.Insert(ctx, req)
	return resp, service.ToStatus(err)
}

func (s *Server) Update(ctx context.Context, req *wire.UpdateRequest) (*wire.UpdateResponse, error) {
	resp, err := s.svc.Update(ctx, req)
	return resp, service.ToStatus(err)
}

func (s *Server) Delete(ctx context.Context, req *wire.DeleteRequest) (*wire.DeleteResponse, error) {
	resp, err := s.svc.Delete(ctx, req)
	return resp, service.ToStatus(err)
}

func (s *Server) BatchInsert(ctx context.Context, req *wire.BatchInsertRequest) (*wire.BatchInsertResponse, error) {
	resp, err := s.svc.BatchInsert(ctx, req)
	return resp, service.ToStatus(err)
}

func (s *Server) Query(req *wire.QueryRequest, stream DataSinkQueryServer) error {
	err := s.svc.Query(stream.Context(), req, stream.Send)
	return service.ToStatus(err)
}

func (s *Server) GetServerStatus(ctx context.Context, req *wire.ServerStatusRequest) (*wire.ServerStatusResponse, error) {
	resp, err := s.svc.GetServerStatus(ctx, req)
	return resp, service.ToStatus(err)
}

func (s *Server) AddDatabase(ctx context.Context, req *wire.AddDatabaseRequest) (*wire.AddDatabaseResponse, error) {
	resp, err := s.svc.AddDatabase(ctx, req)
	return resp, service.ToStatus(err)
}

// Serve listens on addr and serves the DataSink service until ctx is
// canceled, then stops gracefully.
func Serve(ctx context.Context, addr string, svc *service.Service, log *logrus.Logger) error {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}

	grpcServer := grpc.NewServer()
	RegisterDataSinkServer(grpcServer, New(svc))

	go func() {
		<-ctx.Done()
		grpcServer.GracefulStop()
	}()

	log.WithField("address", listener.Addr()).Info("server listening")
	return grpcServer.Serve(listener)
}
