package csvfile

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/couchcryptid/air-quality-etl/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const beijingSample = `No,year,month,day,hour,PM2.5,PM10,TEMP,wd,location
1,2013,3,1,0,4,4,-0.7,NNW,Aotizhongxin
2,2013,3,1,1,8,8,-1.1,N,Aotizhongxin
3,2013,3,1,2,NA,7,-1.1,NNW,Dongsi
4,2013,3,1,3,6,6,-1.4,NW,Dongsi
`

func TestReadTable(t *testing.T) {
	raw, err := ReadTable(strings.NewReader(beijingSample))
	require.NoError(t, err)

	assert.Equal(t, []string{"No", "year", "month", "day", "hour", "PM2.5", "PM10", "TEMP", "wd", "location"}, raw.Columns)
	require.Len(t, raw.Rows, 4)
	assert.Equal(t, "Aotizhongxin", raw.Rows[0][9])
	assert.Equal(t, "-0.7", raw.Rows[0][7])
	assert.Equal(t, "NNW", raw.Rows[0][8])
	assert.Equal(t, "NaN", raw.Rows[2][5], "NA cells are carried as NaN")
}

func TestReadTable_FeedsNormalizer(t *testing.T) {
	raw, err := ReadTable(strings.NewReader(beijingSample))
	require.NoError(t, err)

	table, err := domain.Normalize(raw)
	require.NoError(t, err)

	require.Equal(t, 4, table.Len())
	assert.Contains(t, table.NumericColumns, "TEMP")
	assert.NotContains(t, table.NumericColumns, "wd")
	assert.True(t, table.Rows[0].HasTime())
	assert.True(t, table.Rows[0].HasPM25())
	assert.False(t, table.Rows[2].HasPM25())
	assert.Equal(t, "NNW", table.Rows[0].Labels["wd"])
}

func TestReadTable_Empty(t *testing.T) {
	raw, err := ReadTable(strings.NewReader("  \n"))
	require.NoError(t, err)
	assert.Empty(t, raw.Columns)
	assert.Empty(t, raw.Rows)

	_, err = domain.Normalize(raw)
	assert.ErrorIs(t, err, domain.ErrEmptyInput)
}

func TestSource_LoadTable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "main_data.csv")
	require.NoError(t, os.WriteFile(path, []byte(beijingSample), 0o600))

	src := NewSource(path, slog.Default())
	raw, err := src.LoadTable(context.Background())
	require.NoError(t, err)
	assert.Len(t, raw.Rows, 4)
}

func TestSource_LoadTable_MissingFile(t *testing.T) {
	src := NewSource(filepath.Join(t.TempDir(), "absent.csv"), slog.Default())
	_, err := src.LoadTable(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestSource_LoadTable_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewSource("unused.csv", slog.Default()).LoadTable(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
