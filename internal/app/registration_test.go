package app

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/jeffreymorganio/songza-commands-for-enso/internal/domain"
)

func TestRegistration_RegisterAndUnregister(t *testing.T) {
	reg := &fakeRegistrar{}
	r := NewRegistration(reg, "http://127.0.0.1:8620", nil)
	ctx := context.Background()

	if err := r.Register(ctx, domain.Commands([]string{"top", "featured"})); err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	if got := r.Registered(); !reflect.DeepEqual(got, []string{domain.SongListCommandName, domain.PlaylistCommandName}) {
		t.Errorf("Registered() = %v", got)
	}
	if reg.endpoint != "http://127.0.0.1:8620" {
		t.Errorf("endpoint = %q", reg.endpoint)
	}

	if err := r.Unregister(ctx); err != nil {
		t.Fatalf("Unregister() error = %v", err)
	}
	if err := r.Unregister(ctx); err != nil {
		t.Fatalf("second Unregister() error = %v", err)
	}

	want := []registrarCall{
		{method: "register", name: domain.SongListCommandName},
		{method: "postfixes", name: domain.SongListCommandName, values: []string{"top", "featured"}},
		{method: "register", name: domain.PlaylistCommandName},
		{method: "unregister", name: domain.PlaylistCommandName},
		{method: "unregister", name: domain.SongListCommandName},
	}
	if got := reg.Calls(); !reflect.DeepEqual(got, want) {
		t.Errorf("calls = %#v, want %#v", got, want)
	}
}

func TestRegistration_RollsBackOnFailure(t *testing.T) {
	tests := []struct {
		name   string
		failOn string
		want   []registrarCall
	}{
		{
			name:   "first register fails",
			failOn: "register " + domain.SongListCommandName,
			want: []registrarCall{
				{method: "register", name: domain.SongListCommandName},
			},
		},
		{
			name:   "postfixes fail",
			failOn: "postfixes " + domain.SongListCommandName,
			want: []registrarCall{
				{method: "register", name: domain.SongListCommandName},
				{method: "postfixes", name: domain.SongListCommandName, values: []string{"top"}},
				{method: "unregister", name: domain.SongListCommandName},
			},
		},
		{
			name:   "second register fails",
			failOn: "register " + domain.PlaylistCommandName,
			want: []registrarCall{
				{method: "register", name: domain.SongListCommandName},
				{method: "postfixes", name: domain.SongListCommandName, values: []string{"top"}},
				{method: "register", name: domain.PlaylistCommandName},
				{method: "unregister", name: domain.SongListCommandName},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reg := &fakeRegistrar{failOn: map[string]bool{tt.failOn: true}}
			r := NewRegistration(reg, "http://x", nil)

			err := r.Register(context.Background(), domain.Commands([]string{"top"}))
			if !errors.Is(err, errRegistrar) {
				t.Fatalf("Register() error = %v, want errRegistrar", err)
			}
			if got := reg.Calls(); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("calls = %#v, want %#v", got, tt.want)
			}
			if got := r.Registered(); len(got) != 0 {
				t.Errorf("Registered() = %v, want none", got)
			}
		})
	}
}

func TestRegistration_UnregisterContinuesPastFailure(t *testing.T) {
	reg := &fakeRegistrar{failOn: map[string]bool{"unregister " + domain.PlaylistCommandName: true}}
	r := NewRegistration(reg, "http://x", nil)
	ctx := context.Background()

	if err := r.Register(ctx, domain.Commands(nil)); err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	if err := r.Unregister(ctx); !errors.Is(err, errRegistrar) {
		t.Errorf("Unregister() error = %v, want errRegistrar", err)
	}

	calls := reg.Calls()
	last := calls[len(calls)-1]
	if last.method != "unregister" || last.name != domain.SongListCommandName {
		t.Errorf("last call = %#v, want unregister of the list command", last)
	}
}

func TestRegistration_UpdateValidArguments(t *testing.T) {
	reg := &fakeRegistrar{}
	r := NewRegistration(reg, "http://x", nil)
	ctx := context.Background()

	if err := r.UpdateValidArguments(ctx, domain.SongListCommandName, []string{"top"}); !errors.Is(err, ErrNotRegistered) {
		t.Errorf("UpdateValidArguments() before Register = %v, want ErrNotRegistered", err)
	}

	if err := r.Register(ctx, domain.Commands([]string{"top"})); err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	if err := r.UpdateValidArguments(ctx, domain.SongListCommandName, []string{"top", "new"}); err != nil {
		t.Fatalf("UpdateValidArguments() error = %v", err)
	}
	if err := r.UpdateValidArguments(ctx, domain.PlaylistCommandName, []string{"x"}); !errors.Is(err, ErrNotRegistered) {
		t.Errorf("UpdateValidArguments(playlist) = %v, want ErrNotRegistered", err)
	}

	calls := reg.Calls()
	last := calls[len(calls)-1]
	if last.method != "postfixes" || !reflect.DeepEqual(last.values, []string{"top", "new"}) {
		t.Errorf("last call = %#v, want postfixes [top new]", last)
	}
}
