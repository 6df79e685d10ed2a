package storlet

import (
	"bufio"
	"context"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/jmgilman/go/errors"

	"github.com/Crystal-SDS/filter-samples/internal/store"
)

// PushdownName 注册到节点上的名字
const PushdownName = "pushdown"

// 调用参数
//
//	"<n>-stage"  = "<kind>|<arg>|<arg>"  按 n 的顺序依次执行
//	"delimiter"  = 列分隔符，默认 ","
//	"add_header" = "true" 时第一行原样输出，不经过任何阶段
const (
	stageParamSuffix = "-stage"
	stageArgSep      = "|"
	paramDelimiter   = "delimiter"
	paramAddHeader   = "add_header"
	defaultDelimiter = ","
	maxRecordSize    = 1 << 20
)

// StageKind 可用的处理阶段，只能从这个集合中选择
type StageKind string

const (
	MapColumn          StageKind = "map-column"    // 只保留第 i 列（从 0 开始）
	MapUpper           StageKind = "map-upper"     // 整行转大写
	MapLower           StageKind = "map-lower"     // 整行转小写
	FilterContains     StageKind = "filter-contains"
	FilterPrefix       StageKind = "filter-prefix"
	FilterColumnEquals StageKind = "filter-column-equals" // 第 i 列等于给定值
	ReduceCount        StageKind = "reduce-count"         // 输出记录数
	ReduceSum          StageKind = "reduce-sum"           // 输出第 i 列的和
)

// stage 是解析后的一个处理阶段
type stage struct {
	kind   StageKind
	column int
	value  string
}

func (s stage) isReduce() bool {
	return s.kind == ReduceCount || s.kind == ReduceSum
}

// apply 执行 map/filter 阶段，返回 false 表示记录被过滤掉
func (s stage) apply(record, delim string) (string, bool) {
	switch s.kind {
	case MapColumn:
		cols := strings.Split(record, delim)
		if s.column >= len(cols) {
			return "", false
		}
		return cols[s.column], true
	case MapUpper:
		return strings.ToUpper(record), true
	case MapLower:
		return strings.ToLower(record), true
	case FilterContains:
		return record, strings.Contains(record, s.value)
	case FilterPrefix:
		return record, strings.HasPrefix(record, s.value)
	case FilterColumnEquals:
		cols := strings.Split(record, delim)
		return record, s.column < len(cols) && cols[s.column] == s.value
	}
	return record, true
}

// Pipeline 是一组按顺序执行的阶段，最多一个 reduce 且必须在最后
type Pipeline struct {
	stages    []stage
	reduce    *stage
	delimiter string
	addHeader bool
}

// ParsePipeline 从调用参数解析处理流水线
func ParsePipeline(params map[string]string) (*Pipeline, error) {
	p := &Pipeline{delimiter: defaultDelimiter}
	if d, ok := params[paramDelimiter]; ok && d != "" {
		p.delimiter = d
	}
	if v, ok := params[paramAddHeader]; ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return nil, errors.Wrapf(err, errors.CodeInvalidInput, "parameter %s", paramAddHeader)
		}
		p.addHeader = b
	}

	type keyed struct {
		order int
		value string
	}
	var specs []keyed
	for k, v := range params {
		if !strings.HasSuffix(k, stageParamSuffix) {
			continue
		}
		order, err := strconv.Atoi(strings.TrimSuffix(k, stageParamSuffix))
		if err != nil {
			return nil, errors.Newf(errors.CodeInvalidInput, "bad stage parameter %q", k)
		}
		specs = append(specs, keyed{order: order, value: v})
	}
	sort.Slice(specs, func(i, j int) bool { return specs[i].order < specs[j].order })

	for _, spec := range specs {
		st, err := parseStage(spec.value)
		if err != nil {
			return nil, err
		}
		if p.reduce != nil {
			return nil, errors.Newf(errors.CodeInvalidInput, "stage %q after reduce", spec.value)
		}
		if st.isReduce() {
			p.reduce = &st
			continue
		}
		p.stages = append(p.stages, st)
	}
	return p, nil
}

func parseStage(spec string) (stage, error) {
	parts := strings.Split(spec, stageArgSep)
	st := stage{kind: StageKind(parts[0])}
	args := parts[1:]

	want := 0
	switch st.kind {
	case MapUpper, MapLower, ReduceCount:
	case FilterContains, FilterPrefix, MapColumn, ReduceSum:
		want = 1
	case FilterColumnEquals:
		want = 2
	default:
		return st, errors.Newf(errors.CodeInvalidInput, "unknown stage %q", parts[0])
	}
	if len(args) != want {
		return st, errors.Newf(errors.CodeInvalidInput, "stage %s takes %d argument(s), got %d", st.kind, want, len(args))
	}

	switch st.kind {
	case FilterContains, FilterPrefix:
		st.value = args[0]
	case MapColumn, ReduceSum, FilterColumnEquals:
		col, err := strconv.Atoi(args[0])
		if err != nil || col < 0 {
			return st, errors.Newf(errors.CodeInvalidInput, "stage %s: bad column %q", st.kind, args[0])
		}
		st.column = col
		if st.kind == FilterColumnEquals {
			st.value = args[1]
		}
	}
	return st, nil
}

// Empty 没有任何阶段时按字节直接复制
func (p *Pipeline) Empty() bool {
	return len(p.stages) == 0 && p.reduce == nil
}

// Run 逐行读取 r，执行所有阶段后写入 w，返回写出的字节数
func (p *Pipeline) Run(w io.Writer, r io.Reader) (int64, error) {
	if p.Empty() {
		return copyBuffer(w, r)
	}
	if w == nil {
		w = io.Discard
	}
	bw := bufio.NewWriterSize(w, copyBufferSize)
	cw := &countingWriter{w: bw}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, copyBufferSize), maxRecordSize)

	var (
		count int64
		sum   float64
		first = true
	)
	for scanner.Scan() {
		record := scanner.Text()
		if first && p.addHeader {
			first = false
			if p.reduce == nil {
				if _, err := io.WriteString(cw, record+"\n"); err != nil {
					return cw.n, err
				}
			}
			continue
		}
		first = false

		kept := true
		for _, st := range p.stages {
			if record, kept = st.apply(record, p.delimiter); !kept {
				break
			}
		}
		if !kept {
			continue
		}

		switch {
		case p.reduce == nil:
			if _, err := io.WriteString(cw, record+"\n"); err != nil {
				return cw.n, err
			}
		case p.reduce.kind == ReduceCount:
			count++
		case p.reduce.kind == ReduceSum:
			cols := strings.Split(record, p.delimiter)
			if p.reduce.column >= len(cols) {
				continue
			}
			v, err := strconv.ParseFloat(strings.TrimSpace(cols[p.reduce.column]), 64)
			if err != nil {
				return cw.n, errors.Wrapf(err, errors.CodeInvalidInput, "sum column %d", p.reduce.column)
			}
			sum += v
		}
	}
	if err := scanner.Err(); err != nil {
		return cw.n, errors.Wrap(err, errors.CodeInvalidInput, "read records")
	}

	if p.reduce != nil {
		out := strconv.FormatInt(count, 10)
		if p.reduce.kind == ReduceSum {
			out = strconv.FormatFloat(sum, 'f', -1, 64)
		}
		if _, err := io.WriteString(cw, out+"\n"); err != nil {
			return cw.n, err
		}
	}
	return cw.n, bw.Flush()
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(b []byte) (int, error) {
	n, err := c.w.Write(b)
	c.n += int64(n)
	return n, err
}

// Pushdown 在存储侧对文本对象逐行执行过滤和聚合
// GET 返回处理后的结果；PUT 把处理后的结果写入后端
type Pushdown struct {
	backend store.Store
	logger  log.Logger
}

func NewPushdown(backend store.Store, logger log.Logger) *Pushdown {
	if logger == nil {
		logger = log.NewNopLogger()
	}
	return &Pushdown{backend: backend, logger: log.With(logger, "storlet", PushdownName)}
}

func (p *Pushdown) Name() string {
	return PushdownName
}

func (p *Pushdown) Invoke(ctx context.Context, inv *Invocation) (*Result, error) {
	if err := validate(inv); err != nil {
		return nil, err
	}
	pipeline, err := ParsePipeline(inv.Params)
	if err != nil {
		return nil, err
	}
	level.Debug(p.logger).Log("msg", "running pipeline", "object", inv.ObjectID, "op", inv.Op,
		"stages", len(pipeline.stages), "reduce", pipeline.reduce != nil)

	if inv.Op == OpPut {
		return p.put(ctx, inv, pipeline)
	}

	rc, err := p.backend.Get(ctx, inv.ObjectID)
	if err != nil {
		return nil, wrap(err, "read %q from backend", inv.ObjectID)
	}
	defer rc.Close()
	n, err := pipeline.Run(inv.Output, rc)
	if err != nil {
		return nil, wrap(err, "run pipeline on %q", inv.ObjectID)
	}
	return &Result{Op: OpGet, ObjectID: inv.ObjectID, Evicted: []string{}, Bytes: n}, nil
}

// put 边处理边写入后端
func (p *Pushdown) put(ctx context.Context, inv *Invocation, pipeline *Pipeline) (*Result, error) {
	pr, pw := io.Pipe()
	go func() {
		var w io.Writer = pw
		if inv.Output != nil {
			w = io.MultiWriter(pw, inv.Output)
		}
		_, err := pipeline.Run(w, inv.Input)
		pw.CloseWithError(err)
	}()

	n, err := p.backend.Put(ctx, inv.ObjectID, pr)
	// 后端提前失败时让处理协程退出
	pr.CloseWithError(io.ErrClosedPipe)
	if err != nil {
		return nil, wrap(err, "write %q to backend", inv.ObjectID)
	}
	return &Result{Op: OpPut, ObjectID: inv.ObjectID, Evicted: []string{}, Bytes: n}, nil
}

var _ Storlet = (*Pushdown)(nil)
