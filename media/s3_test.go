package media

import "testing"

func TestObjectURL(t *testing.T) {
	cases := []struct {
		cfg  Config
		key  string
		want string
	}{
		{Config{Endpoint: "minio:9000", Bucket: "images"}, "a.png", "http://minio:9000/images/a.png"},
		{Config{Endpoint: "s3.example.com", Bucket: "img", UseSSL: true}, "b.jpg", "https://s3.example.com/img/b.jpg"},
	}
	for _, c := range cases {
		if got := ObjectURL(c.cfg, c.key); got != c.want {
			t.Errorf("ObjectURL(%+v, %q) = %q, want %q", c.cfg, c.key, got, c.want)
		}
	}
}

func TestNewStripsScheme(t *testing.T) {
	s, err := New(Config{Endpoint: "http://localhost:9000", AccessKey: "k", SecretKey: "s", Bucket: "images"})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if s.cfg.Endpoint != "localhost:9000" {
		t.Errorf("endpoint = %q, want localhost:9000", s.cfg.Endpoint)
	}
}
