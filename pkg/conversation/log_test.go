package conversation

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestNewLogIsSeededWithGreeting(t *testing.T) {
	l := NewLog()

	turns := l.Snapshot()
	require.Len(t, turns, 1)
	require.Equal(t, RoleAssistant, turns[0].Role)
	require.Equal(t, WelcomeMessage, turns[0].Content)
	require.Equal(t, turns[0], l.Last())
}

func TestAppendOnlyPreservesPriorTurns(t *testing.T) {
	l := NewLog()
	previous := l.Snapshot()

	for _, content := range []string{"Paris?", "Sunny, 22°C", "", "Berlin?"} {
		l.Append(NewUserTurn(content))
		current := l.Snapshot()
		require.Len(t, current, len(previous)+1)
		for i := range previous {
			require.Equal(t, previous[i], current[i], "turn %d changed", i)
		}
		require.Equal(t, content, current[len(current)-1].Content)
		previous = current
	}

	require.Equal(t, 5, l.Len())
	require.Equal(t, "", previous[3].Content)
}

func TestSnapshotIsACopy(t *testing.T) {
	l := NewLog()
	l.Append(NewUserTurn("Paris?"))

	s := l.Snapshot()
	s[1].Content = "mutated"

	require.Equal(t, "Paris?", l.Snapshot()[1].Content)
}

func TestObserversAreNotifiedWithTerminalIndex(t *testing.T) {
	var seen []int
	var contents []string
	l := NewLog(WithObserver(ObserverFunc(func(turn Turn, index int) {
		seen = append(seen, index)
		contents = append(contents, turn.Content)
	})))

	l.Append(NewUserTurn("one"))
	l.Append(NewAssistantTurn("two"))

	require.Equal(t, []int{1, 2}, seen)
	require.Equal(t, []string{"one", "two"}, contents)
}

func TestObserverMayReadLogDuringNotification(t *testing.T) {
	l := NewLog()
	var lengths []int
	l.AddObserver(ObserverFunc(func(turn Turn, index int) {
		lengths = append(lengths, l.Len())
		require.Equal(t, turn, l.Last())
	}))

	l.Append(NewUserTurn("hi"))
	require.Equal(t, []int{2}, lengths)
}

func TestConcurrentAppendsKeepEveryTurn(t *testing.T) {
	l := NewLog()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			l.Append(NewUserTurn("x"))
		}()
	}
	wg.Wait()

	require.Equal(t, 51, l.Len())
	require.Equal(t, RoleAssistant, l.Snapshot()[0].Role)
}

func TestExportJSONAndYAML(t *testing.T) {
	l := NewLog()
	l.Append(NewUserTurn("Paris?"))

	var buf bytes.Buffer
	require.NoError(t, l.Export(&buf, ExportFormatJSON))
	var fromJSON []Turn
	require.NoError(t, json.Unmarshal(buf.Bytes(), &fromJSON))
	require.Len(t, fromJSON, 2)
	require.Equal(t, "Paris?", fromJSON[1].Content)

	buf.Reset()
	require.NoError(t, l.Export(&buf, ExportFormatYAML))
	var fromYAML []map[string]interface{}
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &fromYAML))
	require.Len(t, fromYAML, 2)
	require.Equal(t, "user", fromYAML[1]["role"])

	require.Error(t, l.Export(&buf, ExportFormat("toml")))
}

func TestSaveToFilePicksFormatFromExtension(t *testing.T) {
	dir := t.TempDir()
	l := NewLog()

	path := filepath.Join(dir, "nested", "transcript.yml")
	require.NoError(t, l.SaveToFile(path))
	b, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(b), "role: assistant")

	require.Equal(t, ExportFormatJSON, FormatFromFilename("out.json"))
	require.Equal(t, ExportFormatJSON, FormatFromFilename("out"))
	require.Equal(t, ExportFormatYAML, FormatFromFilename("OUT.YAML"))
}
