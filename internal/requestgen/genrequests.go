package requestgen

import (
	"strconv"

	"github.com/dchest/uniuri"
	"github.com/indigo-web/conveyor/kv"
)

// Headers returns n header fields, the last of which is always Host. Values are random.
func Headers(n int) *kv.Storage {
	hdrs := kv.NewPrealloc(n)

	for i := 0; i < n-1; i++ {
		hdrs.Add("some-random-header-name-nobody-cares-about"+strconv.Itoa(i), uniuri.NewLen(100))
	}

	return hdrs.Add("Host", "localhost")
}

func HeadersBlock(hdrs *kv.Storage) (buff []byte) {
	for key, value := range hdrs.Pairs() {
		buff = append(buff, key+": "+value+"\r\n"...)
	}

	return buff
}

// Generate renders a complete HTTP/1.1 request. A non-empty body is sent with
// Content-Length.
func Generate(method, path string, hdrs *kv.Storage, body string) (request []byte) {
	request = append(request, method+" "+path+" HTTP/1.1\r\n"...)
	request = append(request, HeadersBlock(hdrs)...)

	if len(body) > 0 {
		request = append(request, "Content-Length: "+strconv.Itoa(len(body))+"\r\n"...)
	}

	request = append(request, '\r', '\n')

	return append(request, body...)
}
