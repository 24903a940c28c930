package service

import (
	"context"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/jhump/protoreflect/dynamic"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/descriptorpb"

	"github.com/veldt-lang/veldt/internal/analyzer"
	"github.com/veldt-lang/veldt/internal/config"
	"github.com/veldt-lang/veldt/internal/constgen"
	"github.com/veldt-lang/veldt/internal/lexer"
	"github.com/veldt-lang/veldt/internal/manifest"
	"github.com/veldt-lang/veldt/internal/parser"
	"github.com/veldt-lang/veldt/internal/pipeline"
	"github.com/veldt-lang/veldt/internal/printer"
	"github.com/veldt-lang/veldt/internal/registry"
	"github.com/veldt-lang/veldt/internal/report"
	"github.com/veldt-lang/veldt/internal/resolve"
	"github.com/veldt-lang/veldt/internal/store"
)

// handleResolve answers a single resolution query against the sealed
// registry. Arguments must cover the declared arity in full; the RPC
// surface does not expand defaults.
func (s *Service) handleResolve(ctx context.Context, in *dynamic.Message) (*dynamic.Message, error) {
	requestID := uuid.NewString()
	logger := s.logger.With().Str("rpc", "Resolve").Str("request", requestID).Logger()

	q, err := s.queryOf(in)
	if err != nil {
		logger.Debug().Err(err).Msg("rejected resolve request")
		return nil, err
	}

	verdict := resolve.Resolve(q, s.registry)
	rep := report.Build(q, verdict, s.registry)

	if s.store != nil {
		entry := store.EntryFor(pipeline.RequireResult{Query: q, Verdict: verdict}, rep)
		entry.ID = requestID
		if err := s.store.Record(entry); err != nil {
			logger.Warn().Err(err).Msg("trace recording failed")
		}
	}

	logger.Debug().Str("goal", rep.Goal).Str("verdict", string(rep.Status)).Msg("resolve rpc served")
	return s.resolveResponse(rep), nil
}

// queryOf validates the request against the registry's declarations
// and builds the resolution query. Caller-side free variables carry no
// owning declaration; distinct names are distinct variables within the
// one request.
func (s *Service) queryOf(in *dynamic.Message) (*resolve.Query, error) {
	target := messageField(in, "target")
	if target == nil {
		return nil, status.Error(codes.InvalidArgument, "target is required")
	}
	targetName := stringField(target, "name")
	if targetName == "" {
		return nil, status.Error(codes.InvalidArgument, "target name is required")
	}
	ifaceName := stringField(in, "iface")
	if ifaceName == "" {
		return nil, status.Error(codes.InvalidArgument, "iface is required")
	}

	ifaceDecl, ok := s.registry.Interface(ifaceName)
	if !ok {
		return nil, status.Errorf(codes.NotFound, "interface %s is not declared", ifaceName)
	}

	// Builtin scalars are implicit zero-arity targets, same as in the
	// analyzer; everything else must be declared.
	targetArgs := messagesField(target, "args")
	var targetTerms []constgen.Term
	if _, builtin := constgen.KindFromName(targetName); builtin {
		if len(targetArgs) > 0 {
			return nil, status.Errorf(codes.InvalidArgument,
				"builtin type %s takes no constant arguments", targetName)
		}
	} else {
		typeDecl, ok := s.registry.Type(targetName)
		if !ok {
			return nil, status.Errorf(codes.NotFound, "type %s is not declared", targetName)
		}
		if len(targetArgs) != typeDecl.Arity() {
			return nil, status.Errorf(codes.InvalidArgument,
				"type %s expects %d constant arguments, got %d", targetName, typeDecl.Arity(), len(targetArgs))
		}
		terms, err := termsOf(targetArgs, typeDecl.Params, "target")
		if err != nil {
			return nil, err
		}
		targetTerms = terms
	}

	ifaceArgs := messagesField(in, "args")
	if len(ifaceArgs) != ifaceDecl.Arity() {
		return nil, status.Errorf(codes.InvalidArgument,
			"interface %s expects %d constant arguments, got %d", ifaceName, ifaceDecl.Arity(), len(ifaceArgs))
	}
	ifaceTerms, err := termsOf(ifaceArgs, ifaceDecl.Params, "interface")
	if err != nil {
		return nil, err
	}

	return &resolve.Query{
		Decl:      constgen.NoDecl,
		Target:    registry.TypeRef{Name: targetName, Args: targetTerms},
		Interface: ifaceName,
		Args:      ifaceTerms,
	}, nil
}

// termsOf converts wire arguments into terms, one per declared slot.
// The declared kind governs; an explicit kind on the wire must agree
// with it.
func termsOf(args []*dynamic.Message, params []registry.ConstParam, label string) ([]constgen.Term, error) {
	terms := make([]constgen.Term, len(args))
	for i, arg := range args {
		slot := params[i]
		if kindName := stringField(arg, "kind"); kindName != "" {
			kind, ok := constgen.KindFromName(kindName)
			if !ok {
				return nil, status.Errorf(codes.InvalidArgument,
					"%s argument %d: unknown kind %q", label, i+1, kindName)
			}
			if kind != slot.Kind {
				return nil, status.Errorf(codes.InvalidArgument,
					"%s argument %d: kind %s does not match declared %s", label, i+1, kindName, slot.Kind)
			}
		}

		name := stringField(arg, "name")
		value := stringField(arg, "value")
		switch {
		case name != "" && value != "":
			return nil, status.Errorf(codes.InvalidArgument,
				"%s argument %d: name and value are mutually exclusive", label, i+1)
		case name != "":
			terms[i] = constgen.Var{Decl: constgen.NoDecl, Name: name}
		case value != "":
			text, negative := strings.CutPrefix(value, "-")
			magnitude, err := strconv.ParseUint(text, 0, 64)
			if err != nil {
				return nil, status.Errorf(codes.InvalidArgument,
					"%s argument %d: malformed constant %q", label, i+1, value)
			}
			lit, err := constgen.ParseLit(slot.Kind, negative, magnitude)
			if err != nil {
				return nil, status.Errorf(codes.InvalidArgument,
					"%s argument %d: %v", label, i+1, err)
			}
			terms[i] = lit
		default:
			return nil, status.Errorf(codes.InvalidArgument,
				"%s argument %d: constant argument needs a value or a name", label, i+1)
		}
	}
	return terms, nil
}

func (s *Service) resolveResponse(rep *report.Report) *dynamic.Message {
	resp := s.newResponse("Resolve")
	resp.SetFieldByName("verdict", string(rep.Status))
	if rep.Resolved != nil {
		resp.SetFieldByName("impl", rep.Resolved.Signature)
	}

	bindingType := s.methods["Resolve"].GetOutputType().FindFieldByName("bindings").GetMessageType()
	for _, b := range rep.Bindings {
		binding := dynamic.NewMessage(bindingType)
		binding.SetFieldByName("name", b.Name)
		binding.SetFieldByName("term", b.Term)
		resp.AddRepeatedFieldByName("bindings", binding)
	}
	for _, impl := range rep.Candidates {
		resp.AddRepeatedFieldByName("candidates", impl.Signature)
	}
	for _, impl := range rep.NearMisses {
		resp.AddRepeatedFieldByName("candidates", impl.Signature)
	}
	return resp
}

// handleCheck runs the full front end over one submitted document and
// returns every diagnostic and resolution report. The document gets
// its own registry; the daemon's sealed registry is not consulted.
func (s *Service) handleCheck(ctx context.Context, in *dynamic.Message) (*dynamic.Message, error) {
	requestID := uuid.NewString()
	logger := s.logger.With().Str("rpc", "Check").Str("request", requestID).Logger()

	source := stringField(in, "source")
	if source == "" {
		return nil, status.Error(codes.InvalidArgument, "source is required")
	}
	filename := stringField(in, "filename")
	if filename == "" {
		filename = "request" + config.SourceFileExt
	}

	pctx := pipeline.NewPipelineContext(source)
	pctx.FilePath = filename
	if isManifest(filename) {
		program, errs := manifest.Parse([]byte(source), filename)
		pctx.AstRoot = program
		for _, e := range errs {
			pctx.AddError(e)
		}
		pctx = pipeline.New(&analyzer.SemanticAnalyzerProcessor{}).Run(pctx)
	} else {
		pctx = pipeline.New(
			&lexer.LexerProcessor{},
			&parser.ParserProcessor{},
			&analyzer.SemanticAnalyzerProcessor{},
		).Run(pctx)
	}

	if s.store != nil {
		for i, result := range pctx.RequireResults {
			entry := store.EntryFor(result, pctx.Reports[i])
			if err := s.store.Record(entry); err != nil {
				logger.Warn().Err(err).Msg("trace recording failed")
			}
		}
	}

	logger.Debug().
		Str("filename", filename).
		Int("diagnostics", len(pctx.Errors)).
		Int("reports", len(pctx.Reports)).
		Msg("check rpc served")
	return s.checkResponse(pctx), nil
}

func isManifest(filename string) bool {
	for _, ext := range config.ManifestFileExtensions {
		if strings.HasSuffix(filename, ext) {
			return true
		}
	}
	return false
}

func (s *Service) checkResponse(pctx *pipeline.PipelineContext) *dynamic.Message {
	resp := s.newResponse("Check")
	out := s.methods["Check"].GetOutputType()
	diagType := out.FindFieldByName("diagnostics").GetMessageType()
	reportType := out.FindFieldByName("reports").GetMessageType()
	bindingType := reportType.FindFieldByName("bindings").GetMessageType()

	for _, e := range pctx.Errors {
		diag := dynamic.NewMessage(diagType)
		diag.SetFieldByName("code", e.Code)
		diag.SetFieldByName("message", e.Text())
		diag.SetFieldByName("file", e.File)
		setField(diag, "line", e.Line)
		setField(diag, "column", e.Column)
		resp.AddRepeatedFieldByName("diagnostics", diag)
	}

	for _, rep := range pctx.Reports {
		r := dynamic.NewMessage(reportType)
		r.SetFieldByName("goal", rep.Goal)
		r.SetFieldByName("status", string(rep.Status))
		if rep.Resolved != nil {
			r.SetFieldByName("impl", rep.Resolved.Signature)
		}
		for _, b := range rep.Bindings {
			binding := dynamic.NewMessage(bindingType)
			binding.SetFieldByName("name", b.Name)
			binding.SetFieldByName("term", b.Term)
			r.AddRepeatedFieldByName("bindings", binding)
		}
		for _, impl := range rep.Candidates {
			r.AddRepeatedFieldByName("candidates", impl.Signature)
		}
		for _, impl := range rep.NearMisses {
			r.AddRepeatedFieldByName("candidates", impl.Signature)
		}
		resp.AddRepeatedFieldByName("reports", r)
	}
	return resp
}

// handleList enumerates declared implementation records, optionally
// filtered to one interface, in declaration order.
func (s *Service) handleList(ctx context.Context, in *dynamic.Message) (*dynamic.Message, error) {
	ifaceName := stringField(in, "iface")

	var recs []*registry.ImplementationRecord
	if ifaceName == "" {
		recs = s.registry.Records()
	} else {
		if _, ok := s.registry.Interface(ifaceName); !ok {
			return nil, status.Errorf(codes.NotFound, "interface %s is not declared", ifaceName)
		}
		recs = s.registry.RecordsFor(ifaceName)
	}

	resp := s.newResponse("ListImplementations")
	for _, rec := range recs {
		resp.AddRepeatedFieldByName("impls", printer.Record(rec))
	}
	s.logger.Debug().Str("rpc", "ListImplementations").Int("impls", len(recs)).Msg("list rpc served")
	return resp, nil
}

// setField normalizes plain Go integers to the field's declared wire
// width before setting; dynamic messages reject mismatched kinds.
func setField(m *dynamic.Message, name string, v interface{}) {
	fd := m.GetMessageDescriptor().FindFieldByName(name)
	if fd == nil {
		return
	}
	if n, ok := v.(int); ok {
		switch fd.GetType() {
		case descriptorpb.FieldDescriptorProto_TYPE_INT32,
			descriptorpb.FieldDescriptorProto_TYPE_SINT32,
			descriptorpb.FieldDescriptorProto_TYPE_SFIXED32:
			m.SetFieldByName(name, int32(n))
			return
		case descriptorpb.FieldDescriptorProto_TYPE_INT64,
			descriptorpb.FieldDescriptorProto_TYPE_SINT64,
			descriptorpb.FieldDescriptorProto_TYPE_SFIXED64:
			m.SetFieldByName(name, int64(n))
			return
		}
	}
	m.SetFieldByName(name, v)
}

func stringField(m *dynamic.Message, name string) string {
	v, _ := m.GetFieldByName(name).(string)
	return v
}

func messageField(m *dynamic.Message, name string) *dynamic.Message {
	v, _ := m.GetFieldByName(name).(*dynamic.Message)
	return v
}

func messagesField(m *dynamic.Message, name string) []*dynamic.Message {
	raw, _ := m.GetFieldByName(name).([]interface{})
	msgs := make([]*dynamic.Message, 0, len(raw))
	for _, item := range raw {
		if msg, ok := item.(*dynamic.Message); ok {
			msgs = append(msgs, msg)
		}
	}
	return msgs
}
