package pdf

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/billwell/internal/common"
	"github.com/Veraticus/billwell/internal/format"
	"github.com/Veraticus/billwell/internal/model"
	"github.com/Veraticus/billwell/internal/report"
	"github.com/Veraticus/billwell/internal/service"
)

var fastRetry = service.RetryOptions{MaxAttempts: 3, InitialDelay: time.Millisecond, MaxDelay: time.Millisecond}

func sampleDocument() report.Document {
	s := report.EmptySummaries(2024)
	s.Expenses.Total = 1500
	s.Invoices.Revenue = 3000
	return report.BuildDocument(report.Compose(s), s, format.DefaultFormatter(), time.Now())
}

func TestExporter_Export(t *testing.T) {
	var gotHTML string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/forms/chromium/convert/html", r.URL.Path)
		assert.Equal(t, http.MethodPost, r.Method)

		file, header, err := r.FormFile("files")
		require.NoError(t, err)
		assert.Equal(t, "index.html", header.Filename)
		data, _ := io.ReadAll(file)
		gotHTML = string(data)

		w.Header().Set("Content-Type", "application/pdf")
		_, _ = w.Write([]byte("%PDF-1.7 fake"))
	}))
	defer srv.Close()

	exp, err := NewExporter(srv.URL+"/", fastRetry)
	require.NoError(t, err)

	out, err := exp.Export(context.Background(), sampleDocument())
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.7 fake", string(out))
	assert.Contains(t, gotHTML, report.DocumentTitle)
	assert.Contains(t, gotHTML, "Invoice Revenue")
}

func TestExporter_ExportExpenses(t *testing.T) {
	var gotHTML string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		file, _, err := r.FormFile("files")
		require.NoError(t, err)
		data, _ := io.ReadAll(file)
		gotHTML = string(data)
		_, _ = w.Write([]byte("%PDF-1.7 expenses"))
	}))
	defer srv.Close()

	exp, err := NewExporter(srv.URL, fastRetry)
	require.NoError(t, err)

	expenses := []model.Record{{Kind: model.KindExpenses, Description: "Paper", Category: "Office", Amount: 1500, PaymentMethod: "Card"}}
	r, err := report.BuildExpenseReport(expenses, format.DefaultFormatter(), time.Now())
	require.NoError(t, err)

	out, err := exp.ExportExpenses(context.Background(), r)
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.7 expenses", string(out))
	assert.Contains(t, gotHTML, report.ExpenseReportSubtitle)
	assert.Contains(t, gotHTML, "Paper")
	assert.Contains(t, gotHTML, "Payment Method")
}

func TestExporter_RetriesServerErrors(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			http.Error(w, "chromium busy", http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte("%PDF"))
	}))
	defer srv.Close()

	exp, err := NewExporter(srv.URL, fastRetry)
	require.NoError(t, err)

	out, err := exp.Export(context.Background(), sampleDocument())
	require.NoError(t, err)
	assert.Equal(t, "%PDF", string(out))
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestExporter_ClientErrorNotRetried(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		atomic.AddInt32(&calls, 1)
		http.Error(w, "bad form", http.StatusBadRequest)
	}))
	defer srv.Close()

	exp, err := NewExporter(srv.URL, fastRetry)
	require.NoError(t, err)

	_, err = exp.Export(context.Background(), sampleDocument())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad form")
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestNewExporter_RequiresURL(t *testing.T) {
	_, err := NewExporter("  ", fastRetry)
	assert.ErrorIs(t, err, common.ErrMissingConfig)
}

func TestClient_Ping(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/health" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		_, _ = w.Write([]byte(`{"status":"up"}`))
	}))
	defer srv.Close()

	require.NoError(t, NewClient(srv.URL).Ping(context.Background()))
	assert.Error(t, NewClient(srv.URL+"/nope").Ping(context.Background()))
}
