// seed_stock genera un script SQL con lotes iniciales a partir de un CSV de inventario.
//
// Uso: go run ./cmd/seed_stock [ruta/inventario.csv]
// Columnas: name,quantity,production_date,expiry_date (fechas YYYY-MM-DD, primera fila = encabezado).
// Acepta UTF-8 o Big5 (exportaciones de planillas antiguas); se detecta automáticamente.
// Escribe: internal/infrastructure/postgres/migrations/002_seed_beverages.sql
package main

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/jhoicas/bebidas-api/internal/application/inventory"
	"github.com/jhoicas/bebidas-api/internal/domain/entity"
	"github.com/jhoicas/bebidas-api/pkg/clock"
	"golang.org/x/text/encoding/traditionalchinese"
	"golang.org/x/text/transform"
)

type seedRow struct {
	name       string
	quantity   int
	production time.Time
	expiry     time.Time
}

func main() {
	csvPath := "inventario.csv"
	if len(os.Args) > 1 {
		csvPath = os.Args[1]
	}
	raw, err := os.ReadFile(csvPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Abrir CSV: %v\n", err)
		os.Exit(1)
	}

	rows, err := parseCSV(decodeLegacy(raw))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Leer CSV: %v\n", err)
		os.Exit(1)
	}

	moduleRoot := findModuleRoot()
	outPath := filepath.Join(moduleRoot, "internal", "infrastructure", "postgres", "migrations", "002_seed_beverages.sql")
	out, err := os.Create(outPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Crear archivo: %v\n", err)
		os.Exit(1)
	}
	defer out.Close()

	if err := writeSQL(out, rows); err != nil {
		fmt.Fprintf(os.Stderr, "Escribir SQL: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Generado %s: %d lotes\n", outPath, len(rows))
}

// decodeLegacy devuelve un lector UTF-8: el contenido tal cual si ya es UTF-8 válido, si no lo decodifica como Big5.
func decodeLegacy(raw []byte) io.Reader {
	raw = bytes.TrimPrefix(raw, []byte("\xef\xbb\xbf"))
	if utf8.Valid(raw) {
		return bytes.NewReader(raw)
	}
	return transform.NewReader(bytes.NewReader(raw), traditionalchinese.Big5.NewDecoder())
}

// parseCSV valida cada fila con las mismas reglas que una entrada de stock.
func parseCSV(r io.Reader) ([]seedRow, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = 4
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("CSV vacío")
	}

	var rows []seedRow
	for i, rec := range records[1:] {
		line := i + 2
		name := entity.NormalizeName(rec[0])
		if name == "" || utf8.RuneCountInString(name) > inventory.MaxNameLength {
			return nil, fmt.Errorf("línea %d: nombre inválido", line)
		}
		qty, err := strconv.Atoi(strings.TrimSpace(rec[1]))
		if err != nil || qty < 1 || qty > inventory.MaxStockInQuantity {
			return nil, fmt.Errorf("línea %d: cantidad %q fuera de rango 1-%d", line, rec[1], inventory.MaxStockInQuantity)
		}
		production, err := clock.ParseDate(strings.TrimSpace(rec[2]))
		if err != nil {
			return nil, fmt.Errorf("línea %d: %w", line, err)
		}
		expiry, err := clock.ParseDate(strings.TrimSpace(rec[3]))
		if err != nil {
			return nil, fmt.Errorf("línea %d: %w", line, err)
		}
		if expiry.Before(production) {
			return nil, fmt.Errorf("línea %d: vencimiento anterior a producción", line)
		}
		rows = append(rows, seedRow{name: name, quantity: qty, production: production, expiry: expiry})
	}
	return rows, nil
}

func writeSQL(w io.Writer, rows []seedRow) error {
	var b strings.Builder
	b.WriteString("-- Lotes iniciales de bebidas\n")
	b.WriteString("-- Generado por cmd/seed_stock\n\n")
	if len(rows) == 0 {
		b.WriteString("-- (sin filas)\n")
		_, err := io.WriteString(w, b.String())
		return err
	}
	b.WriteString("INSERT INTO beverages (name, quantity, production_date, expiry_date, status, created_at, updated_at) VALUES\n")
	for i, r := range rows {
		fmt.Fprintf(&b, "  ('%s', %d, '%s', '%s', 'NORMAL', now(), now())",
			escapeSQL(r.name), r.quantity, clock.FormatDate(r.production), clock.FormatDate(r.expiry))
		if i < len(rows)-1 {
			b.WriteString(",\n")
		} else {
			b.WriteString(";\n")
		}
	}
	_, err := io.WriteString(w, b.String())
	return err
}

func escapeSQL(s string) string {
	return strings.ReplaceAll(s, "'", "''")
}

func findModuleRoot() string {
	dir, _ := os.Getwd()
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return dir
		}
		dir = parent
	}
}
