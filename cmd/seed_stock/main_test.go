package main

import (
	"strings"
	"testing"

	"github.com/jhoicas/bebidas-api/pkg/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/traditionalchinese"
)

const sampleCSV = "name,quantity,production_date,expiry_date\n" +
	"可樂,24,2024-05-01,2024-06-30\n" +
	"O'Brien Stout, 12 ,2024-04-01,2024-12-31\n"

func TestParseCSV_UTF8(t *testing.T) {
	rows, err := parseCSV(decodeLegacy([]byte(sampleCSV)))
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "可樂", rows[0].name)
	assert.Equal(t, 24, rows[0].quantity)
	assert.Equal(t, clock.Date(2024, 6, 30), rows[0].expiry)
	assert.Equal(t, 12, rows[1].quantity)
}

func TestParseCSV_Big5(t *testing.T) {
	encoded, err := traditionalchinese.Big5.NewEncoder().String(sampleCSV)
	require.NoError(t, err)

	rows, err := parseCSV(decodeLegacy([]byte(encoded)))
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "可樂", rows[0].name)
}

func TestParseCSV_FilasInvalidas(t *testing.T) {
	cases := map[string]string{
		"cantidad 101": "name,quantity,production_date,expiry_date\nCola,101,2024-05-01,2024-06-30\n",
		"sin nombre":   "name,quantity,production_date,expiry_date\n ,1,2024-05-01,2024-06-30\n",
		"fecha":        "name,quantity,production_date,expiry_date\nCola,1,2024/05/01,2024-06-30\n",
		"vence antes":  "name,quantity,production_date,expiry_date\nCola,1,2024-05-01,2024-04-30\n",
		"columnas":     "name,quantity,production_date,expiry_date\nCola,1,2024-05-01\n",
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := parseCSV(strings.NewReader(in))
			assert.Error(t, err)
		})
	}
}

func TestWriteSQL(t *testing.T) {
	rows, err := parseCSV(decodeLegacy([]byte(sampleCSV)))
	require.NoError(t, err)

	var b strings.Builder
	require.NoError(t, writeSQL(&b, rows))
	sql := b.String()
	assert.Contains(t, sql, "INSERT INTO beverages")
	assert.Contains(t, sql, "('可樂', 24, '2024-05-01', '2024-06-30', 'NORMAL', now(), now()),")
	assert.Contains(t, sql, "('O''Brien Stout', 12, '2024-04-01', '2024-12-31', 'NORMAL', now(), now());")
}
