package service

import (
	"context"
	"fmt"

	"github.com/jhump/protoreflect/desc"
	"github.com/jhump/protoreflect/desc/protoparse"
	"github.com/jhump/protoreflect/dynamic"
	"github.com/rs/zerolog"
	"google.golang.org/grpc"

	"github.com/veldt-lang/veldt/internal/registry"
	"github.com/veldt-lang/veldt/internal/store"
)

const (
	protoFile   = "veldt.proto"
	serviceName = "veldt.v1.Resolver"
)

type ServiceOption func(*Service) *Service

func WithLogger(logger zerolog.Logger) ServiceOption {
	return func(s *Service) *Service {
		s.logger = logger
		return s
	}
}

// WithStore records every RPC verdict to a trace store.
func WithStore(st *store.Store) ServiceOption {
	return func(s *Service) *Service {
		s.store = st
		return s
	}
}

var defaultOptions = []ServiceOption{
	WithLogger(zerolog.Nop()),
}

// Service answers resolution RPCs over a sealed registry. The wire
// surface is built at runtime from the embedded proto definition; no
// generated stubs are involved.
type Service struct {
	registry *registry.Registry
	logger   zerolog.Logger
	store    *store.Store

	sd      *desc.ServiceDescriptor
	methods map[string]*desc.MethodDescriptor
}

// New parses the embedded service definition and prepares handlers
// over reg, which must already be sealed.
func New(reg *registry.Registry, options ...ServiceOption) (*Service, error) {
	if !reg.Sealed() {
		return nil, fmt.Errorf("registry must be sealed before serving")
	}

	parser := protoparse.Parser{
		Accessor: protoparse.FileContentsFromMap(map[string]string{
			protoFile: veldtProto,
		}),
	}
	fds, err := parser.ParseFiles(protoFile)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", protoFile, err)
	}
	sd := fds[0].FindService(serviceName)
	if sd == nil {
		return nil, fmt.Errorf("service %s not found in %s", serviceName, protoFile)
	}

	s := &Service{
		registry: reg,
		sd:       sd,
		methods:  make(map[string]*desc.MethodDescriptor),
	}
	for _, md := range sd.GetMethods() {
		s.methods[md.GetName()] = md
	}
	for _, opt := range append(defaultOptions, options...) {
		s = opt(s)
	}
	return s, nil
}

type unaryHandler func(context.Context, *dynamic.Message) (*dynamic.Message, error)

// Register installs the resolver on server under a hand-built service
// descriptor whose handlers decode into dynamic messages.
func (s *Service) Register(server *grpc.Server) {
	handlers := map[string]unaryHandler{
		"Resolve":             s.handleResolve,
		"Check":               s.handleCheck,
		"ListImplementations": s.handleList,
	}

	sd := &grpc.ServiceDesc{
		ServiceName: serviceName,
		HandlerType: (*interface{})(nil),
		Methods:     []grpc.MethodDesc{},
		Streams:     []grpc.StreamDesc{},
		Metadata:    protoFile,
	}
	for _, md := range s.sd.GetMethods() {
		handle, ok := handlers[md.GetName()]
		if !ok {
			continue
		}
		method := md
		sd.Methods = append(sd.Methods, grpc.MethodDesc{
			MethodName: md.GetName(),
			Handler: func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
				in := dynamic.NewMessage(method.GetInputType())
				if err := dec(in); err != nil {
					return nil, err
				}
				return handle(ctx, in)
			},
		})
	}
	server.RegisterService(sd, s)
}

// newResponse builds an empty output message for the named RPC.
func (s *Service) newResponse(method string) *dynamic.Message {
	return dynamic.NewMessage(s.methods[method].GetOutputType())
}
