package exporter

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"demandcast/internal/dataimport"
	"demandcast/pkg/contracts/domain"
)

func month(y int, m time.Month) time.Time {
	return time.Date(y, m, 1, 0, 0, 0, 0, time.UTC)
}

func TestWriteCSV(t *testing.T) {
	tests := []struct {
		name     string
		options  WriteOptions
		expected string
	}{
		{
			name:     "headers and records",
			options:  WriteOptions{Headers: []string{"a", "b"}, Records: [][]string{{"1", "2"}}},
			expected: "a,b\n1,2\n",
		},
		{
			name:     "fields needing quotes",
			options:  WriteOptions{Records: [][]string{{"Home, Garden", `say "hi"`}}},
			expected: "\"Home, Garden\",\"say \"\"hi\"\"\"\n",
		},
		{
			name:     "BOM prefix",
			options:  WriteOptions{Headers: []string{"a"}, BOMPrefix: true},
			expected: "\xEF\xBB\xBFa\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, WriteCSV(&buf, tt.options))
			assert.Equal(t, tt.expected, buf.String())
		})
	}
}

func TestWriteDatasetCSV(t *testing.T) {
	t.Run("with categories", func(t *testing.T) {
		points := []domain.DataPoint{
			domain.NewObservation(month(2023, time.January), 1200, "Beauty"),
			domain.NewObservation(month(2023, time.February), 980.5, "Home & Kitchen"),
			{Date: month(2023, time.March), Category: "Beauty"},
		}

		var buf bytes.Buffer
		require.NoError(t, WriteDatasetCSV(&buf, points))

		assert.Equal(t,
			"date,value,category\n"+
				"2023-01-01,1200,Beauty\n"+
				"2023-02-01,980.5,Home & Kitchen\n"+
				"2023-03-01,0,Beauty\n",
			buf.String())
	})

	t.Run("without categories", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, WriteDatasetCSV(&buf, []domain.DataPoint{
			domain.NewObservation(month(2024, time.May), 7, ""),
		}))
		assert.Equal(t, "date,value\n2024-05-01,7\n", buf.String())
	})

	t.Run("empty", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, WriteDatasetCSV(&buf, nil))
		assert.Equal(t, "date,value\n", buf.String())
	})
}

func TestWriteDatasetCSV_ReimportsUnchanged(t *testing.T) {
	points := []domain.DataPoint{
		domain.NewObservation(month(2023, time.January), 1200, "Beauty"),
		domain.NewObservation(month(2023, time.February), 980, "Home & Kitchen"),
		domain.NewObservation(month(2023, time.March), 1010, "Beauty"),
	}

	var buf bytes.Buffer
	require.NoError(t, WriteDatasetCSV(&buf, points))

	result := dataimport.ParseCSV(buf.String(), false)
	require.NoError(t, result.Err)
	assert.Equal(t, points, result.Data)
}

func TestMergeSeries(t *testing.T) {
	history := []domain.DataPoint{
		domain.NewObservation(month(2023, time.February), 20, "b"),
		domain.NewObservation(month(2023, time.January), 10, "b"),
		domain.NewObservation(month(2023, time.January), 5, "a"),
		{Actual: domain.Float(1)},
	}
	forecast := []domain.DataPoint{
		domain.NewProjection(month(2023, time.February), 21, "b"),
		domain.NewProjection(month(2023, time.March), 30, "b"),
	}

	rows := MergeSeries(history, forecast)

	require.Len(t, rows, 4)
	assert.Equal(t, ForecastRow{Date: "2023-01-01", Category: "a", Actual: domain.Float(5)}, rows[0])
	assert.Equal(t, ForecastRow{Date: "2023-01-01", Category: "b", Actual: domain.Float(10)}, rows[1])
	assert.Equal(t, ForecastRow{Date: "2023-02-01", Category: "b", Actual: domain.Float(20), Forecast: domain.Float(21)}, rows[2])
	assert.Equal(t, ForecastRow{Date: "2023-03-01", Category: "b", Forecast: domain.Float(30)}, rows[3])
}

func TestWriteForecastCSV(t *testing.T) {
	history := []domain.DataPoint{domain.NewObservation(month(2023, time.December), 100, "Toys & Games")}
	forecast := []domain.DataPoint{domain.NewProjection(month(2024, time.January), 130, "Toys & Games")}

	var buf bytes.Buffer
	require.NoError(t, WriteForecastCSV(&buf, history, forecast))

	assert.Equal(t,
		"date,category,actual,forecast\n"+
			"2023-12-01,Toys & Games,100,\n"+
			"2024-01-01,Toys & Games,,130\n",
		buf.String())
}

func TestWriteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "out.csv")

	err := WriteFile(path, func(w io.Writer) error {
		return WriteCSV(w, WriteOptions{Headers: []string{"x"}})
	})
	require.NoError(t, err)

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "x\n", string(content))

	err = WriteFile(path, func(io.Writer) error { return assert.AnError })
	assert.ErrorIs(t, err, assert.AnError)
}
