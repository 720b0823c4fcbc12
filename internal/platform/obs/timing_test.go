package obs

import (
	"context"
	"errors"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTimeLogsOperation(t *testing.T) {
	logger, hook := test.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)
	prev := Logger
	Logger = logger
	t.Cleanup(func() { Logger = prev })

	ctx := WithRequestID(context.Background(), "abc")

	func() (err error) {
		defer Time(ctx, "ok.op")(&err)
		return nil
	}()
	func() (err error) {
		defer Time(ctx, "bad.op")(&err)
		return errors.New("boom")
	}()

	entries := hook.AllEntries()
	require.Len(t, entries, 2)
	assert.Equal(t, "ok.op", entries[0].Data["op"])
	assert.Equal(t, "abc", entries[0].Data["req_id"])
	assert.Nil(t, entries[0].Data[logrus.ErrorKey])
	assert.Equal(t, "bad.op", entries[1].Data["op"])
	assert.EqualError(t, entries[1].Data[logrus.ErrorKey].(error), "boom")
}
