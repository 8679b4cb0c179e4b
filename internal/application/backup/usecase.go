// Package backup implementa el respaldo completo del almacén: exportar, importar y borrar.
package backup

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/litio-erp/internal/application/storage"
	"github.com/jhoicas/litio-erp/internal/domain"
	"github.com/jhoicas/litio-erp/internal/domain/repository"
	"github.com/jhoicas/litio-erp/pkg/logger"
)

// SchemaVersion versión del documento que produce Export.
const SchemaVersion = 1

// FileName nombre sugerido del archivo de respaldo para la fecha dada.
func FileName(t time.Time) string {
	return fmt.Sprintf("litio-erp-backup-%s.json", t.Format("2006-01-02"))
}

// ImportResult cantidad de registros escritos por campo del documento.
type ImportResult map[string]int

// UseCase exporta, importa y borra el contenido completo del almacén.
type UseCase struct {
	store repository.RecordStore
	log   *logger.Logger
	now   func() time.Time
}

// NewUseCase construye el caso de uso de respaldo.
func NewUseCase(store repository.RecordStore, log *logger.Logger) *UseCase {
	if log == nil {
		log = logger.Nop()
	}
	return &UseCase{store: store, log: log, now: time.Now}
}

// Export serializa todas las colecciones exportables, indentado a 2 espacios. Las credenciales y
// las sesiones no se incluyen. Una colección ausente se exporta como arreglo vacío.
func (uc *UseCase) Export(ctx context.Context) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for _, k := range storage.ExportedKeys() {
		recs, err := uc.store.List(ctx, k.Name)
		if err != nil {
			uc.log.Error().Err(err).Str("collection", k.Name).Msg("export: fallo del almacén")
			return nil, fmt.Errorf("%w: export %s: %v", domain.ErrStorageUnavailable, k.Name, err)
		}
		writeKey(&buf, k.ExportField)
		buf.WriteByte('[')
		for i, r := range recs {
			if i > 0 {
				buf.WriteByte(',')
			}
			if !json.Valid(r.Body) {
				return nil, fmt.Errorf("%w: %s/%s", domain.ErrCorruptData, k.Name, r.ID)
			}
			buf.Write(r.Body)
		}
		buf.WriteString("],")
	}
	writeKey(&buf, "exportDate")
	date, _ := json.Marshal(uc.now().UTC().Format(time.RFC3339Nano))
	buf.Write(date)
	buf.WriteByte(',')
	writeKey(&buf, "schemaVersion")
	fmt.Fprintf(&buf, "%d}", SchemaVersion)

	var out bytes.Buffer
	if err := json.Indent(&out, buf.Bytes(), "", "  "); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrCorruptData, err)
	}
	uc.log.Info().Int("bytes", out.Len()).Msg("respaldo exportado")
	return out.Bytes(), nil
}

func writeKey(buf *bytes.Buffer, key string) {
	k, _ := json.Marshal(key)
	buf.Write(k)
	buf.WriteByte(':')
}

// Import reemplaza cada colección presente en el documento (sin mezclar). Los campos
// desconocidos se ignoran y los null se omiten. Todo se valida antes de escribir.
func (uc *UseCase) Import(ctx context.Context, data []byte) (ImportResult, error) {
	var doc map[string]json.RawMessage
	if err := json.Unmarshal(data, &doc); err != nil || doc == nil {
		return nil, fmt.Errorf("%w: el respaldo debe ser un objeto JSON", domain.ErrInvalidInput)
	}
	if err := checkSchemaVersion(doc["schemaVersion"]); err != nil {
		return nil, err
	}

	type pending struct {
		key     storage.Key
		records []repository.RecordInput
	}
	var plan []pending
	for _, k := range storage.ExportedKeys() {
		raw, ok := doc[k.ExportField]
		if !ok || isNull(raw) {
			continue
		}
		records, err := parseCollection(raw)
		if err != nil {
			return nil, fmt.Errorf("%w: campo %q: %v", domain.ErrInvalidInput, k.ExportField, err)
		}
		plan = append(plan, pending{key: k, records: records})
	}

	result := make(ImportResult, len(plan))
	for _, p := range plan {
		if err := uc.store.Replace(ctx, p.key.Name, p.records); err != nil {
			uc.log.Error().Err(err).Str("collection", p.key.Name).Msg("import: fallo del almacén")
			return result, fmt.Errorf("%w: import %s: %v", domain.ErrStorageUnavailable, p.key.Name, err)
		}
		result[p.key.ExportField] = len(p.records)
	}
	uc.log.Info().Interface("records", result).Msg("respaldo importado")
	return result, nil
}

// checkSchemaVersion: ausente equivale a 1 (respaldos anteriores al campo).
func checkSchemaVersion(raw json.RawMessage) error {
	if raw == nil || isNull(raw) {
		return nil
	}
	var v int
	if err := json.Unmarshal(raw, &v); err != nil {
		return fmt.Errorf("%w: schemaVersion debe ser entero", domain.ErrInvalidInput)
	}
	if v < 1 {
		return fmt.Errorf("%w: schemaVersion %d", domain.ErrInvalidInput, v)
	}
	if v > SchemaVersion {
		return fmt.Errorf("%w: %d (soportada %d)", domain.ErrUnsupportedSchema, v, SchemaVersion)
	}
	return nil
}

// parseCollection compacta cada elemento y resuelve su id. Los elementos sin id de tipo string
// reciben uno nuevo; si son objetos, el id se agrega al cuerpo.
func parseCollection(raw json.RawMessage) ([]repository.RecordInput, error) {
	var elems []json.RawMessage
	if err := json.Unmarshal(raw, &elems); err != nil {
		return nil, fmt.Errorf("se esperaba un arreglo")
	}
	out := make([]repository.RecordInput, 0, len(elems))
	seen := make(map[string]struct{}, len(elems))
	for i, e := range elems {
		var compact bytes.Buffer
		if err := json.Compact(&compact, e); err != nil {
			return nil, fmt.Errorf("elemento %d: %v", i, err)
		}
		body := compact.Bytes()
		id, body, err := resolveID(body)
		if err != nil {
			return nil, fmt.Errorf("elemento %d: %v", i, err)
		}
		if _, dup := seen[id]; dup {
			return nil, fmt.Errorf("id duplicado %q", id)
		}
		seen[id] = struct{}{}
		out = append(out, repository.RecordInput{ID: id, Body: body})
	}
	return out, nil
}

func resolveID(body []byte) (string, []byte, error) {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(body, &obj); err != nil || obj == nil {
		// No es un objeto: se guarda tal cual con un id de registro nuevo.
		return uuid.NewString(), body, nil
	}
	if raw, ok := obj["id"]; ok {
		var id string
		if err := json.Unmarshal(raw, &id); err == nil && id != "" {
			return id, body, nil
		}
	}
	id := uuid.NewString()
	obj["id"], _ = json.Marshal(id)
	withID, err := json.Marshal(obj)
	if err != nil {
		return "", nil, err
	}
	return id, withID, nil
}

func isNull(raw json.RawMessage) bool {
	return string(bytes.TrimSpace(raw)) == "null"
}

// Clear elimina todas las colecciones conocidas, credenciales y sesiones incluidas.
func (uc *UseCase) Clear(ctx context.Context) error {
	for _, k := range storage.AllKeys() {
		if err := uc.store.Drop(ctx, k.Name); err != nil {
			uc.log.Error().Err(err).Str("collection", k.Name).Msg("clear: fallo del almacén")
			return fmt.Errorf("%w: clear %s: %v", domain.ErrStorageUnavailable, k.Name, err)
		}
	}
	uc.log.Warn().Msg("almacén borrado por completo")
	return nil
}
