package author

import (
	"reflect"
	"testing"
)

func TestExtractPrefersTable(t *testing.T) {
	got := Extract("Alumno: Otro Nombre", nil, []string{" Ana  Gómez ", "Legajo 1234"})
	if !reflect.DeepEqual(got, []string{"Ana Gómez"}) {
		t.Fatalf("unexpected authors: %q", got)
	}
}

func TestFromLabelSameLine(t *testing.T) {
	text := "Trabajo práctico 2\nAlumno: Juan Pérez Legajo 12345\nIntroducción"
	got := Extract(text, nil, nil)
	if !reflect.DeepEqual(got, []string{"Juan Pérez"}) {
		t.Fatalf("unexpected authors: %q", got)
	}
}

func TestFromLabelNextLine(t *testing.T) {
	text := "Nombres y apellidos:\nMaría López, Pedro Díaz y Lucía Fernández\nResumen del trabajo"
	got := Extract(text, nil, nil)
	want := []string{"María López", "Pedro Díaz", "Lucía Fernández"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %q, got %q", want, got)
	}
}

func TestFromHeadersFallback(t *testing.T) {
	got := Extract("sin datos de autor", []string{"Universidad Nacional", "Alumna: Carla Ruiz"}, nil)
	if !reflect.DeepEqual(got, []string{"Carla Ruiz"}) {
		t.Fatalf("unexpected authors: %q", got)
	}
}

func TestExtractUnknown(t *testing.T) {
	if got := Extract("texto sin etiquetas", []string{"Cátedra de Historia"}, nil); got != nil {
		t.Fatalf("expected unknown authors, got %q", got)
	}
}

func TestClean(t *testing.T) {
	in := []string{"Ana Gómez", "alumno", "Legajo", "Juan 2", "juan@example.com", "  "}
	got := Clean(in)
	if !reflect.DeepEqual(got, []string{"Ana Gómez"}) {
		t.Fatalf("unexpected cleaned names: %q", got)
	}
}

func TestIsSynonym(t *testing.T) {
	for _, s := range []string{"Nombre", " APELLIDOS Y NOMBRES ", "alumna:"} {
		if !IsSynonym(s) {
			t.Fatalf("expected %q to be an author label", s)
		}
	}
	if IsSynonym("materia") {
		t.Fatalf("materia is not an author label")
	}
}
