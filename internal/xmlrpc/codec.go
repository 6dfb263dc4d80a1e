// Package xmlrpc implements the inbound half of the XML-RPC protocol: decoding
// methodCall documents, encoding methodResponse and fault documents, and an
// HTTP endpoint that routes calls to registered handlers.
package xmlrpc

import (
	"bytes"
	"encoding/base64"
	"encoding/xml"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"golang.org/x/net/html/charset"
)

// Standard fault codes.
const (
	FaultParse          = -32700
	FaultMethodNotFound = -32601
	FaultInvalidParams  = -32602
	FaultInternal       = -32603
	FaultApplication    = -32500
)

// FaultRateLimited is returned for calls rejected by the rate limiter.
const FaultRateLimited = FaultApplication - 2

// Fault is an XML-RPC fault returned to the caller.
type Fault struct {
	Code    int
	Message string
}

func (f *Fault) Error() string {
	return fmt.Sprintf("xmlrpc fault %d: %s", f.Code, f.Message)
}

type methodCall struct {
	XMLName    xml.Name `xml:"methodCall"`
	MethodName string   `xml:"methodName"`
	Params     []param  `xml:"params>param"`
}

type param struct {
	Value value `xml:"value"`
}

type value struct {
	Text     string       `xml:",chardata"`
	String   *string      `xml:"string"`
	Int      *string      `xml:"int"`
	I4       *string      `xml:"i4"`
	I8       *string      `xml:"i8"`
	Boolean  *string      `xml:"boolean"`
	Double   *string      `xml:"double"`
	DateTime *string      `xml:"dateTime.iso8601"`
	Base64   *string      `xml:"base64"`
	Nil      *struct{}    `xml:"nil"`
	Array    *arrayValue  `xml:"array"`
	Struct   *structValue `xml:"struct"`
}

type arrayValue struct {
	Data []value `xml:"data>value"`
}

type structValue struct {
	Members []member `xml:"member"`
}

type member struct {
	Name  string `xml:"name"`
	Value value  `xml:"value"`
}

// DecodeCall reads a methodCall document. Parameters decode to string, int,
// bool, float64, []byte, nil, []interface{} or map[string]interface{};
// dateTime values stay strings.
func DecodeCall(r io.Reader) (string, []interface{}, error) {
	dec := xml.NewDecoder(r)
	dec.CharsetReader = charset.NewReaderLabel

	var call methodCall
	if err := dec.Decode(&call); err != nil {
		return "", nil, &Fault{Code: FaultParse, Message: "malformed methodCall: " + err.Error()}
	}
	name := strings.TrimSpace(call.MethodName)
	if name == "" {
		return "", nil, &Fault{Code: FaultParse, Message: "missing methodName"}
	}

	params := make([]interface{}, 0, len(call.Params))
	for i, p := range call.Params {
		v, err := p.Value.decode()
		if err != nil {
			return "", nil, &Fault{Code: FaultInvalidParams, Message: fmt.Sprintf("param %d: %v", i, err)}
		}
		params = append(params, v)
	}
	return name, params, nil
}

func (v value) decode() (interface{}, error) {
	switch {
	case v.String != nil:
		return *v.String, nil
	case v.Int != nil:
		return strconv.Atoi(strings.TrimSpace(*v.Int))
	case v.I4 != nil:
		return strconv.Atoi(strings.TrimSpace(*v.I4))
	case v.I8 != nil:
		return strconv.Atoi(strings.TrimSpace(*v.I8))
	case v.Boolean != nil:
		switch strings.TrimSpace(*v.Boolean) {
		case "1", "true":
			return true, nil
		case "0", "false":
			return false, nil
		default:
			return nil, fmt.Errorf("invalid boolean %q", *v.Boolean)
		}
	case v.Double != nil:
		return strconv.ParseFloat(strings.TrimSpace(*v.Double), 64)
	case v.DateTime != nil:
		return strings.TrimSpace(*v.DateTime), nil
	case v.Base64 != nil:
		return base64.StdEncoding.DecodeString(strings.TrimSpace(*v.Base64))
	case v.Nil != nil:
		return nil, nil
	case v.Array != nil:
		out := make([]interface{}, 0, len(v.Array.Data))
		for _, item := range v.Array.Data {
			d, err := item.decode()
			if err != nil {
				return nil, err
			}
			out = append(out, d)
		}
		return out, nil
	case v.Struct != nil:
		out := make(map[string]interface{}, len(v.Struct.Members))
		for _, m := range v.Struct.Members {
			d, err := m.Value.decode()
			if err != nil {
				return nil, err
			}
			out[m.Name] = d
		}
		return out, nil
	default:
		// An untyped value is a string.
		return v.Text, nil
	}
}

// EncodeResponse writes a methodResponse carrying a single value.
func EncodeResponse(w io.Writer, result interface{}) error {
	var b bytes.Buffer
	b.WriteString(xml.Header)
	b.WriteString("<methodResponse><params><param>")
	if err := encodeValue(&b, result); err != nil {
		return err
	}
	b.WriteString("</param></params></methodResponse>")
	_, err := w.Write(b.Bytes())
	return err
}

// EncodeFault writes a methodResponse carrying a fault.
func EncodeFault(w io.Writer, f *Fault) error {
	var b bytes.Buffer
	b.WriteString(xml.Header)
	b.WriteString("<methodResponse><fault>")
	if err := encodeValue(&b, map[string]interface{}{
		"faultCode":   f.Code,
		"faultString": f.Message,
	}); err != nil {
		return err
	}
	b.WriteString("</fault></methodResponse>")
	_, err := w.Write(b.Bytes())
	return err
}

func encodeValue(b *bytes.Buffer, v interface{}) error {
	b.WriteString("<value>")
	switch t := v.(type) {
	case nil:
		b.WriteString("<nil/>")
	case string:
		b.WriteString("<string>")
		if err := xml.EscapeText(b, []byte(t)); err != nil {
			return err
		}
		b.WriteString("</string>")
	case bool:
		if t {
			b.WriteString("<boolean>1</boolean>")
		} else {
			b.WriteString("<boolean>0</boolean>")
		}
	case int:
		fmt.Fprintf(b, "<int>%d</int>", t)
	case int64:
		fmt.Fprintf(b, "<int>%d</int>", t)
	case float64:
		b.WriteString("<double>" + strconv.FormatFloat(t, 'f', -1, 64) + "</double>")
	case []byte:
		b.WriteString("<base64>" + base64.StdEncoding.EncodeToString(t) + "</base64>")
	case []string:
		b.WriteString("<array><data>")
		for _, s := range t {
			if err := encodeValue(b, s); err != nil {
				return err
			}
		}
		b.WriteString("</data></array>")
	case []interface{}:
		b.WriteString("<array><data>")
		for _, item := range t {
			if err := encodeValue(b, item); err != nil {
				return err
			}
		}
		b.WriteString("</data></array>")
	case map[string]interface{}:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		b.WriteString("<struct>")
		for _, k := range keys {
			b.WriteString("<member><name>")
			if err := xml.EscapeText(b, []byte(k)); err != nil {
				return err
			}
			b.WriteString("</name>")
			if err := encodeValue(b, t[k]); err != nil {
				return err
			}
			b.WriteString("</member>")
		}
		b.WriteString("</struct>")
	default:
		return fmt.Errorf("xmlrpc: cannot encode %T", v)
	}
	b.WriteString("</value>")
	return nil
}

// StringParam returns params[i] as a string.
func StringParam(params []interface{}, i int) (string, error) {
	if i >= len(params) {
		return "", &Fault{Code: FaultInvalidParams, Message: fmt.Sprintf("missing param %d", i)}
	}
	s, ok := params[i].(string)
	if !ok {
		return "", &Fault{Code: FaultInvalidParams, Message: fmt.Sprintf("param %d: want string, got %T", i, params[i])}
	}
	return s, nil
}

// StringsParam returns params[i] as a string slice.
func StringsParam(params []interface{}, i int) ([]string, error) {
	if i >= len(params) {
		return nil, &Fault{Code: FaultInvalidParams, Message: fmt.Sprintf("missing param %d", i)}
	}
	items, ok := params[i].([]interface{})
	if !ok {
		return nil, &Fault{Code: FaultInvalidParams, Message: fmt.Sprintf("param %d: want array, got %T", i, params[i])}
	}
	out := make([]string, 0, len(items))
	for j, item := range items {
		s, ok := item.(string)
		if !ok {
			return nil, &Fault{Code: FaultInvalidParams, Message: fmt.Sprintf("param %d[%d]: want string, got %T", i, j, item)}
		}
		out = append(out, s)
	}
	return out, nil
}
