package chttp

import (
	"bytes"
	"net/http"
	"sync"

	"github.com/cockroachdb/errors"
)

// ErrBufferFull is returned from writes that would grow the response buffer past its limit.
var ErrBufferFull = errors.New("chttp: response buffer is full")

var bufPool = sync.Pool{
	New: func() any { return bytes.NewBuffer(nil) },
}

// ResponseBuffer is a [ResponseWriter] that holds the status code, headers and body in memory
// until it is flushed. Until the first flush the response can be [ResponseBuffer.Reset] to start
// over, which is how faulting handlers are prevented from leaking partial responses.
type ResponseBuffer struct {
	resp        http.ResponseWriter
	buf         *bytes.Buffer
	header      http.Header
	limit       int
	status      int
	wroteHeader bool
	flushed     bool
}

// NewResponseBuffer initializes a buffered response writer on top of resp. A negative limit
// disables the write limit.
func NewResponseBuffer(resp http.ResponseWriter, limit int) *ResponseBuffer {
	return &ResponseBuffer{
		resp:   resp,
		buf:    bufPool.Get().(*bytes.Buffer),
		header: make(http.Header),
		limit:  limit,
		status: http.StatusOK,
	}
}

// Header returns the buffered header map. It is copied to the underlying writer on first flush.
func (w *ResponseBuffer) Header() http.Header {
	return w.header
}

// WriteHeader buffers the status code. Only the first call has an effect, mirroring the standard
// library's behavior.
func (w *ResponseBuffer) WriteHeader(status int) {
	if w.flushed || w.wroteHeader {
		return
	}

	w.status = status
	w.wroteHeader = true
}

// Write buffers p. When the configured limit would be exceeded nothing is written at all and
// [ErrBufferFull] is returned.
func (w *ResponseBuffer) Write(p []byte) (int, error) {
	if w.limit >= 0 && w.buf.Len()+len(p) > w.limit {
		return 0, ErrBufferFull
	}

	return w.buf.Write(p)
}

// Reset discards the buffered body, headers and status so a completely new response can be
// written. It panics when the response was already flushed to the underlying writer since those
// bytes cannot be taken back.
func (w *ResponseBuffer) Reset() {
	if w.flushed {
		panic("chttp: cannot reset, already flushed")
	}

	w.buf.Reset()
	w.header = make(http.Header)
	w.status = http.StatusOK
	w.wroteHeader = false
}

// Flush implements http.Flusher: it flushes the buffer and the underlying writer. After an
// explicit flush the response can no longer be reset.
func (w *ResponseBuffer) Flush() {
	_ = w.FlushError()

	if f, ok := w.resp.(http.Flusher); ok {
		f.Flush()
	}
}

// FlushError writes the buffered status, headers and body to the underlying writer. It may be
// called multiple times; the header and status are sent only once and the body buffer is drained
// on each call so the write limit applies per flush.
func (w *ResponseBuffer) FlushError() error {
	if !w.flushed {
		dst := w.resp.Header()
		for k, vs := range w.header {
			dst[k] = vs
		}

		w.resp.WriteHeader(w.status)
		w.flushed = true
	}

	if w.buf.Len() > 0 {
		if _, err := w.resp.Write(w.buf.Bytes()); err != nil {
			return errors.Wrap(err, "write buffered response")
		}

		w.buf.Reset()
	}

	return nil
}

// FlushBuffer implements the implicit flush performed by [ToStd] after every request.
func (w *ResponseBuffer) FlushBuffer() error {
	return w.FlushError()
}

// Free returns the body buffer to the pool. The ResponseBuffer must not be used afterwards.
func (w *ResponseBuffer) Free() {
	if w.buf != nil {
		w.buf.Reset()
		bufPool.Put(w.buf)
		w.buf = nil
	}
}

// Unwrap returns the underlying response writer, it supports http.ResponseController.
func (w *ResponseBuffer) Unwrap() http.ResponseWriter {
	return w.resp
}

var _ ResponseWriter = &ResponseBuffer{}
