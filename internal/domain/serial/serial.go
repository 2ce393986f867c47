// Package serial implementa la síntesis y validación de números de serie
// (servicio de dominio, sin acceso a datos). El patrón por defecto es
// {productCode}-{year}-{sequence:3}; el mes es opcional.
package serial

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/jhoicas/AlmacenPos-api/internal/domain"
)

// Límites del generador.
const (
	MinQuantity = 1
	MaxQuantity = 1000
	MinCodeLen  = 5
	MaxCodeLen  = 50
)

// DefaultPattern es el patrón por defecto del código.
const DefaultPattern = "{productCode}-{year}-{sequence:3}"

// Config parametriza la síntesis de códigos. Es un value object inmutable:
// se pasa explícitamente por la cadena de llamadas, nunca como estado global.
type Config struct {
	Pattern        string // plantilla con {productCode}, {year}, {month}, {sequence:N}
	IncludeMonth   bool
	SequenceDigits int
	Separator      string
}

// DefaultConfig devuelve la configuración por defecto del generador.
func DefaultConfig() Config {
	return Config{
		Pattern:        DefaultPattern,
		IncludeMonth:   false,
		SequenceDigits: 3,
		Separator:      "-",
	}
}

var codeRegexp = regexp.MustCompile(`^[A-Z0-9_-]+$`)

var seqPlaceholder = regexp.MustCompile(`\{sequence(?::(\d+))?\}`)

// BuildCode sintetiza un código sustituyendo los placeholders del patrón.
// El código resultante se normaliza a mayúsculas.
func BuildCode(cfg Config, productCode string, now time.Time, sequence int) string {
	pattern := cfg.Pattern
	if pattern == "" {
		pattern = DefaultPattern
	}
	if cfg.IncludeMonth && !strings.Contains(pattern, "{month}") {
		// Insertar el mes entre año y secuencia: {productCode}-{year}-{month}-{sequence:N}
		pattern = strings.Replace(pattern, "{year}", "{year}"+sep(cfg)+"{month}", 1)
	}

	out := strings.ReplaceAll(pattern, "{productCode}", productCode)
	out = strings.ReplaceAll(out, "{year}", fmt.Sprintf("%04d", now.Year()))
	out = strings.ReplaceAll(out, "{month}", fmt.Sprintf("%02d", int(now.Month())))
	out = seqPlaceholder.ReplaceAllStringFunc(out, func(m string) string {
		digits := cfg.SequenceDigits
		if sub := seqPlaceholder.FindStringSubmatch(m); len(sub) == 2 && sub[1] != "" {
			digits, _ = strconv.Atoi(sub[1])
		}
		if digits <= 0 {
			digits = 3
		}
		return fmt.Sprintf("%0*d", digits, sequence)
	})
	return strings.ToUpper(out)
}

// Parsed es el resultado de descomponer un código generado con el patrón por defecto.
type Parsed struct {
	ProductCode string
	Year        int
	Month       int // 0 si el patrón no incluye mes
	Sequence    int
}

// ParseCode descompone un código {productCode}-{year}[-{month}]-{sequence}.
// Propiedad: ParseCode(BuildCode(cfg, p, t, s)) recupera p, año y s.
// El código de producto puede contener el separador; se resuelve de derecha
// a izquierda (secuencia, luego mes/año).
func ParseCode(cfg Config, code string) (*Parsed, error) {
	s := sep(cfg)
	parts := strings.Split(code, s)
	minParts := 3
	if cfg.IncludeMonth {
		minParts = 4
	}
	if len(parts) < minParts {
		return nil, domain.ErrInvalidInput
	}

	seqPart := parts[len(parts)-1]
	sequence, err := strconv.Atoi(seqPart)
	if err != nil || sequence < 0 {
		return nil, domain.ErrInvalidInput
	}

	idx := len(parts) - 2
	month := 0
	if cfg.IncludeMonth {
		month, err = strconv.Atoi(parts[idx])
		if err != nil || month < 1 || month > 12 {
			return nil, domain.ErrInvalidInput
		}
		idx--
	}
	year, err := strconv.Atoi(parts[idx])
	if err != nil || year < 1970 || year > 9999 {
		return nil, domain.ErrInvalidInput
	}

	return &Parsed{
		ProductCode: strings.Join(parts[:idx], s),
		Year:        year,
		Month:       month,
		Sequence:    sequence,
	}, nil
}

// ValidateCode verifica formato: no vacío, 5–50 caracteres, solo [A-Z0-9_-].
// La existencia en base de datos se reporta por separado (caso de uso).
func ValidateCode(code string) error {
	if code == "" {
		return domain.NewCodedError(domain.CodeValidation, "código vacío", nil)
	}
	if len(code) < MinCodeLen || len(code) > MaxCodeLen {
		return domain.NewCodedError(domain.CodeValidation,
			fmt.Sprintf("longitud fuera de rango (%d-%d): %q", MinCodeLen, MaxCodeLen, code), nil)
	}
	if !codeRegexp.MatchString(code) {
		return domain.NewCodedError(domain.CodeValidation,
			fmt.Sprintf("caracteres inválidos en %q (permitidos: A-Z 0-9 _ -)", code), nil)
	}
	return nil
}

// Prefix devuelve el prefijo producto/año[/mes] con el que arrancan todos los
// códigos del período. Se usa para buscar la secuencia máxima existente.
func Prefix(cfg Config, productCode string, now time.Time) string {
	p := strings.ToUpper(productCode) + sep(cfg) + fmt.Sprintf("%04d", now.Year())
	if cfg.IncludeMonth {
		p += sep(cfg) + fmt.Sprintf("%02d", int(now.Month()))
	}
	return p + sep(cfg)
}

// ValidateRequest valida los parámetros de un lote de generación.
func ValidateRequest(productCode string, quantity int) error {
	if strings.TrimSpace(productCode) == "" {
		return domain.NewCodedError(domain.CodeValidation, "productCode requerido", nil)
	}
	if quantity < MinQuantity || quantity > MaxQuantity {
		return domain.NewCodedError(domain.CodeValidation,
			fmt.Sprintf("quantity fuera de rango (%d-%d): %d", MinQuantity, MaxQuantity, quantity), nil)
	}
	return nil
}

func sep(cfg Config) string {
	if cfg.Separator == "" {
		return "-"
	}
	return cfg.Separator
}
