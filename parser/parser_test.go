package parser_test

import (
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/taoky/tsumugu/parser"
)

func mustBase(t *testing.T, raw string) *url.URL {
	t.Helper()
	u, err := url.Parse(raw)
	require.NoError(t, err)
	return u
}

// Fixture A from spec §8: an nginx autoindex with entries foo/ (dir,
// 2024-01-02) and bar.txt (size 10, 2024-01-03).
func TestNginxFixtureA(t *testing.T) {
	html := `<html><body>
<pre><a href="../">../</a>
<a href="foo/">foo/</a>                                              02-Jan-2024 00:00    -
<a href="bar.txt">bar.txt</a>                                        03-Jan-2024 00:00   10
</pre>
</body></html>`

	p, err := parser.Get("nginx")
	require.NoError(t, err)
	items, err := p.Parse(mustBase(t, "http://example.com/a/"), []byte(html))
	require.NoError(t, err)
	require.Len(t, items, 2)

	require.Equal(t, "foo", items[0].Name)
	require.Equal(t, parser.Directory, items[0].Kind)
	require.Nil(t, items[0].Size)
	require.NotNil(t, items[0].MTime)
	require.Equal(t, 2, items[0].MTime.Day())

	require.Equal(t, "bar.txt", items[1].Name)
	require.Equal(t, parser.File, items[1].Kind)
	require.NotNil(t, items[1].Size)
	require.EqualValues(t, 10, *items[1].Size)
	require.Equal(t, 3, items[1].MTime.Day())
}

func TestNginxSkipsParentAndEmpty(t *testing.T) {
	p, err := parser.Get("nginx")
	require.NoError(t, err)
	items, err := p.Parse(mustBase(t, "http://example.com/a/"), []byte("<pre><a href=\"../\">../</a>\n</pre>"))
	require.NoError(t, err)
	require.Empty(t, items)
}

func TestApacheF2Table(t *testing.T) {
	html := `<html><body><table>
<tr><th>Name</th><th>Last modified</th><th>Size</th></tr>
<tr><td><a href="/a/">Parent Directory</a></td></tr>
<tr><td><a href="sub/">sub/</a></td><td align="right">2024-01-02 10:00  </td><td align="right">  - </td></tr>
<tr><td><a href="readme.txt">readme.txt</a></td><td align="right">2024-01-03 11:30  </td><td align="right">1.5K</td></tr>
</table></body></html>`

	p, err := parser.Get("apache-f2")
	require.NoError(t, err)
	items, err := p.Parse(mustBase(t, "http://example.com/a/"), []byte(html))
	require.NoError(t, err)
	require.Len(t, items, 2)
	require.Equal(t, "sub", items[0].Name)
	require.Equal(t, parser.Directory, items[0].Kind)
	require.Equal(t, "readme.txt", items[1].Name)
	require.NotNil(t, items[1].Size)
	require.EqualValues(t, 1500, *items[1].Size)
}

func TestLighttpdClassColumns(t *testing.T) {
	html := `<table>
<tr><td class="n"><a href="pkg/">pkg/</a></td><td class="m"></td><td class="s"></td></tr>
<tr><td class="n"><a href="file.iso">file.iso</a></td><td class="m">2024-02-01 12:00:00</td><td class="s">2M</td></tr>
</table>`
	p, err := parser.Get("lighttpd")
	require.NoError(t, err)
	items, err := p.Parse(mustBase(t, "http://example.com/d/"), []byte(html))
	require.NoError(t, err)
	require.Len(t, items, 2)
	require.Equal(t, parser.Directory, items[0].Kind)
	require.Equal(t, "file.iso", items[1].Name)
	require.EqualValues(t, 2*1000*1000, *items[1].Size)
	require.Equal(t, 2024, items[1].MTime.Year())
}

func TestCaddyDataOrder(t *testing.T) {
	html := `<table><tbody>
<tr><td><a href="images/">images/</a></td><td data-order="0"></td><td data-order="0"></td></tr>
<tr><td><a href="v1.tar.gz">v1.tar.gz</a></td><td data-order="4096">4 KiB</td><td data-order="1700000000">2 days ago</td></tr>
</tbody></table>`
	p, err := parser.Get("caddy")
	require.NoError(t, err)
	items, err := p.Parse(mustBase(t, "http://example.com/x/"), []byte(html))
	require.NoError(t, err)
	require.Len(t, items, 2)
	require.Equal(t, "v1.tar.gz", items[1].Name)
	require.EqualValues(t, 4096, *items[1].Size)
	require.NotNil(t, items[1].MTime)
	require.Equal(t, time.Unix(1700000000, 0).UTC(), *items[1].MTime)
}

func TestDirectoryListerClasses(t *testing.T) {
	html := `<ul>
<li class="directory"><a href="docs/">docs</a></li>
<li class="file"><a href="manual.pdf">manual.pdf</a> <span class="file-size">3M</span></li>
</ul>`
	p, err := parser.Get("directory-lister")
	require.NoError(t, err)
	items, err := p.Parse(mustBase(t, "http://example.com/l/"), []byte(html))
	require.NoError(t, err)
	require.Len(t, items, 2)
	require.Equal(t, parser.Directory, items[0].Kind)
	require.Equal(t, "manual.pdf", items[1].Name)
	require.EqualValues(t, 3*1000*1000, *items[1].Size)
}

func TestDockerBareAnchors(t *testing.T) {
	html := `<a href="../">../</a>
<a href="centos/">centos/</a>
<a href="rhel/">rhel/</a>
<a href="docker-ce.repo">docker-ce.repo</a>`
	p, err := parser.Get("docker")
	require.NoError(t, err)
	items, err := p.Parse(mustBase(t, "http://download.docker.com/linux/"), []byte(html))
	require.NoError(t, err)
	require.Len(t, items, 3)
	require.Nil(t, items[0].Size)
	require.Equal(t, "centos", items[0].Name)
	require.Equal(t, parser.File, items[2].Kind)
}

func TestOutOfDirectoryBecomesSymlink(t *testing.T) {
	p, err := parser.Get("docker")
	require.NoError(t, err)
	items, err := p.Parse(mustBase(t, "http://example.com/linux/centos/"),
		[]byte(`<a href="/linux/rhel/">rhel</a>`))
	require.NoError(t, err)
	require.Len(t, items, 1)
	require.Equal(t, parser.Symlink, items[0].Kind)
	require.Equal(t, "http://example.com/linux/rhel/", items[0].Href)
}

func TestUnknownDialectErrors(t *testing.T) {
	_, err := parser.Get("made-up")
	require.Error(t, err)
}
