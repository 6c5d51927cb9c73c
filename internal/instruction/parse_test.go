package instruction

import (
	"strings"
	"testing"
	"time"

	"github.com/moby/buildkit/frontend/dockerfile/parser"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// classify parses a single-instruction snippet and classifies its node.
func classify(t *testing.T, line string) (Instruction, error) {
	t.Helper()

	res, err := parser.Parse(strings.NewReader(line + "\n"))
	require.NoError(t, err)
	require.NotNil(t, res.AST)
	require.Len(t, res.AST.Children, 1)

	return FromNode(res.AST.Children[0])
}

func mustClassify(t *testing.T, line string) Instruction {
	t.Helper()

	ins, err := classify(t, line)
	require.NoError(t, err)
	return ins
}

func TestFromNode_From(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		line string
		want FromDetails
	}{
		{
			name: "bare image",
			line: "FROM nginx:alpine",
			want: FromDetails{Image: "nginx:alpine"},
		},
		{
			name: "alias is lowercased",
			line: "FROM golang:1.22 AS Builder",
			want: FromDetails{Image: "golang:1.22", Alias: "builder"},
		},
		{
			name: "platform flag",
			line: "FROM --platform=linux/amd64 golang:1.22 AS build",
			want: FromDetails{Image: "golang:1.22", Alias: "build", Platform: "linux/amd64"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			ins := mustClassify(t, tt.line)
			assert.Equal(t, KindFrom, ins.Kind)
			require.NotNil(t, ins.From)
			assert.Equal(t, tt.want, *ins.From)
		})
	}
}

func TestFromNode_Env(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		line string
		want []KeyValue
	}{
		{
			name: "key equals value",
			line: "ENV FLASK_APP=app.py",
			want: []KeyValue{{Key: "FLASK_APP", Value: "app.py"}},
		},
		{
			name: "legacy space form keeps the whole remainder",
			line: "ENV GREETING hello world",
			want: []KeyValue{{Key: "GREETING", Value: "hello world"}},
		},
		{
			name: "multiple pairs on one line",
			line: "ENV A=1 B=2 C=3",
			want: []KeyValue{{Key: "A", Value: "1"}, {Key: "B", Value: "2"}, {Key: "C", Value: "3"}},
		},
		{
			name: "quoted value with spaces",
			line: `ENV MESSAGE="hello there"`,
			want: []KeyValue{{Key: "MESSAGE", Value: "hello there"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			ins := mustClassify(t, tt.line)
			assert.Equal(t, KindEnv, ins.Kind)
			assert.Equal(t, tt.want, ins.Env)
		})
	}
}

func TestFromNode_Env_NoValueDegrades(t *testing.T) {
	t.Parallel()

	ins := mustClassify(t, "ENV")
	assert.Equal(t, KindUnknown, ins.Kind)
	assert.Equal(t, "env", ins.Keyword)
}

func TestFromNode_Expose(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		line string
		want []PortSpec
	}{
		{
			name: "protocol defaults to tcp",
			line: "EXPOSE 5000",
			want: []PortSpec{{Container: "5000", Protocol: "tcp"}},
		},
		{
			name: "explicit tcp",
			line: "EXPOSE 8080/tcp",
			want: []PortSpec{{Container: "8080", Protocol: "tcp"}},
		},
		{
			name: "udp is retained",
			line: "EXPOSE 9125/udp",
			want: []PortSpec{{Container: "9125", Protocol: "udp"}},
		},
		{
			name: "uppercase protocol is normalized",
			line: "EXPOSE 8080/TCP",
			want: []PortSpec{{Container: "8080", Protocol: "tcp"}},
		},
		{
			name: "multiple ports",
			line: "EXPOSE 80 443",
			want: []PortSpec{
				{Container: "80", Protocol: "tcp"},
				{Container: "443", Protocol: "tcp"},
			},
		},
		{
			name: "range expands per port",
			line: "EXPOSE 6000-6001",
			want: []PortSpec{
				{Container: "6000", Protocol: "tcp"},
				{Container: "6001", Protocol: "tcp"},
			},
		},
		{
			name: "unresolved build arg is skipped",
			line: "EXPOSE $PORT 8080",
			want: []PortSpec{{Container: "8080", Protocol: "tcp"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			ins := mustClassify(t, tt.line)
			assert.Equal(t, KindExpose, ins.Kind)
			assert.Equal(t, tt.want, ins.Ports)
		})
	}
}

func TestFromNode_Volume(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		line string
		want []string
	}{
		{name: "single path", line: "VOLUME /data", want: []string{"/data"}},
		{name: "multiple paths", line: "VOLUME /data /logs", want: []string{"/data", "/logs"}},
		{name: "json form", line: `VOLUME ["/data", "/logs"]`, want: []string{"/data", "/logs"}},
		{name: "quoted path is unquoted", line: `VOLUME "/var/lib/app"`, want: []string{"/var/lib/app"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			ins := mustClassify(t, tt.line)
			assert.Equal(t, KindVolume, ins.Kind)
			assert.Equal(t, tt.want, ins.Volumes)
		})
	}
}

func TestFromNode_WorkdirAndUser(t *testing.T) {
	t.Parallel()

	ins := mustClassify(t, "WORKDIR /app")
	assert.Equal(t, KindWorkdir, ins.Kind)
	assert.Equal(t, "/app", ins.Workdir)

	ins = mustClassify(t, `WORKDIR "/srv/api"`)
	assert.Equal(t, "/srv/api", ins.Workdir)

	ins = mustClassify(t, "USER appuser")
	assert.Equal(t, KindUser, ins.Kind)
	assert.Equal(t, "appuser", ins.User)

	ins = mustClassify(t, "USER 1000:1000")
	assert.Equal(t, "1000:1000", ins.User)
}

func TestFromNode_CommandForms(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		line     string
		wantKind Kind
		wantForm Form
		wantArgs []string
	}{
		{
			name:     "cmd exec form",
			line:     `CMD ["flask", "run", "--host=0.0.0.0"]`,
			wantKind: KindCmd,
			wantForm: FormExec,
			wantArgs: []string{"flask", "run", "--host=0.0.0.0"},
		},
		{
			name:     "cmd shell form",
			line:     "CMD flask run --host=0.0.0.0",
			wantKind: KindCmd,
			wantForm: FormShell,
			wantArgs: []string{"flask", "run", "--host=0.0.0.0"},
		},
		{
			name:     "shell form keeps quoted groups together",
			line:     `CMD echo "hello world"`,
			wantKind: KindCmd,
			wantForm: FormShell,
			wantArgs: []string{"echo", "hello world"},
		},
		{
			name:     "shell form drops trailing comment",
			line:     "CMD flask run # dev server only",
			wantKind: KindCmd,
			wantForm: FormShell,
			wantArgs: []string{"flask", "run"},
		},
		{
			name:     "entrypoint exec form",
			line:     `ENTRYPOINT ["./entrypoint.sh"]`,
			wantKind: KindEntrypoint,
			wantForm: FormExec,
			wantArgs: []string{"./entrypoint.sh"},
		},
		{
			name:     "entrypoint shell form",
			line:     "ENTRYPOINT ./entrypoint.sh --migrate",
			wantKind: KindEntrypoint,
			wantForm: FormShell,
			wantArgs: []string{"./entrypoint.sh", "--migrate"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			ins := mustClassify(t, tt.line)
			assert.Equal(t, tt.wantKind, ins.Kind)
			assert.Equal(t, tt.wantForm, ins.Form)
			assert.Equal(t, tt.wantArgs, ins.Args)
		})
	}
}

func TestFromNode_UnsupportedArguments(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		line string
	}{
		{name: "cmd array that is not json", line: `CMD ["flask" "run"]`},
		{name: "entrypoint array that is not json", line: `ENTRYPOINT [./run.sh]`},
		{name: "cmd with unterminated quote", line: `CMD echo "unterminated`},
		{name: "healthcheck shell with unterminated quote", line: `HEALTHCHECK CMD curl -f "http://localhost`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := classify(t, tt.line)
			require.Error(t, err)

			var unsupported *UnsupportedArgumentError
			require.ErrorAs(t, err, &unsupported)
			assert.Equal(t, 1, unsupported.Line)
		})
	}
}

func TestFromNode_Run_ToleratesBracketPayloads(t *testing.T) {
	t.Parallel()

	ins := mustClassify(t, "RUN [ -f /etc/passwd ] && echo ok")
	assert.Equal(t, KindRun, ins.Kind)
	assert.Equal(t, FormShell, ins.Form)

	ins = mustClassify(t, `RUN ["apk", "add", "curl"]`)
	assert.Equal(t, KindRun, ins.Kind)
	assert.Equal(t, FormExec, ins.Form)
}

func TestFromNode_Healthcheck(t *testing.T) {
	t.Parallel()

	t.Run("exec form with flags", func(t *testing.T) {
		t.Parallel()

		ins := mustClassify(t,
			`HEALTHCHECK --interval=1m --timeout=5s --retries=5 --start-period=10s CMD ["curl", "-f", "http://localhost/"]`)
		assert.Equal(t, KindHealthcheck, ins.Kind)
		require.NotNil(t, ins.Healthcheck)

		hc := ins.Healthcheck
		assert.False(t, hc.None)
		assert.Equal(t, []string{"curl", "-f", "http://localhost/"}, hc.Test)
		assert.Equal(t, FormExec, hc.Form)
		assert.Equal(t, time.Minute, hc.Interval)
		assert.Equal(t, 5*time.Second, hc.Timeout)
		assert.Equal(t, 10*time.Second, hc.StartPeriod)
		assert.Equal(t, 5, hc.Retries)
	})

	t.Run("shell form is tokenized", func(t *testing.T) {
		t.Parallel()

		ins := mustClassify(t, "HEALTHCHECK CMD wget --spider -q http://localhost:8080/health")
		require.NotNil(t, ins.Healthcheck)
		assert.Equal(t, FormShell, ins.Healthcheck.Form)
		assert.Equal(t,
			[]string{"wget", "--spider", "-q", "http://localhost:8080/health"},
			ins.Healthcheck.Test)
		assert.Zero(t, ins.Healthcheck.Interval)
	})

	t.Run("none clears", func(t *testing.T) {
		t.Parallel()

		ins := mustClassify(t, "HEALTHCHECK NONE")
		require.NotNil(t, ins.Healthcheck)
		assert.True(t, ins.Healthcheck.None)
		assert.Empty(t, ins.Healthcheck.Test)
	})

	t.Run("missing command degrades to unknown", func(t *testing.T) {
		t.Parallel()

		ins := mustClassify(t, "HEALTHCHECK --interval=5s CMD")
		assert.Equal(t, KindUnknown, ins.Kind)
	})
}

func TestFromNode_CopyStageRef(t *testing.T) {
	t.Parallel()

	ins := mustClassify(t, "COPY --from=builder /src/app /usr/local/bin/app")
	assert.Equal(t, KindCopy, ins.Kind)
	assert.Equal(t, "builder", ins.StageRef)

	ins = mustClassify(t, "COPY . /app")
	assert.Equal(t, KindCopy, ins.Kind)
	assert.Empty(t, ins.StageRef)
}

func TestFromNode_UnknownKeyword(t *testing.T) {
	t.Parallel()

	ins := mustClassify(t, "BOGUS do something")
	assert.Equal(t, KindUnknown, ins.Kind)
	assert.Equal(t, "bogus", ins.Keyword)
	assert.Equal(t, 1, ins.Line)
	assert.Contains(t, ins.Raw, "BOGUS")
}

func TestFromNode_RecognizedKindsWithoutPayload(t *testing.T) {
	t.Parallel()

	tests := []struct {
		line string
		want Kind
	}{
		{line: "ARG VERSION=1.0", want: KindArg},
		{line: `LABEL maintainer="dev@example.com"`, want: KindLabel},
		{line: "STOPSIGNAL SIGTERM", want: KindStopSignal},
		{line: `SHELL ["/bin/bash", "-c"]`, want: KindShell},
		{line: "ONBUILD RUN echo hi", want: KindOnbuild},
		{line: "MAINTAINER dev@example.com", want: KindMaintainer},
		{line: "ADD app.tar.gz /opt/", want: KindAdd},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			t.Parallel()

			ins := mustClassify(t, tt.line)
			assert.Equal(t, tt.want, ins.Kind)
		})
	}
}

func TestFromNode_LineNumbers(t *testing.T) {
	t.Parallel()

	res, err := parser.Parse(strings.NewReader("FROM alpine:3.20\n\n# comment\nEXPOSE 80\n"))
	require.NoError(t, err)
	require.Len(t, res.AST.Children, 2)

	expose, err := FromNode(res.AST.Children[1])
	require.NoError(t, err)
	assert.Equal(t, 4, expose.Line)
}
