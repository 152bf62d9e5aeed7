package htmlutil

import (
	"context"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func parse(t *testing.T, body string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	require.NoError(t, err)
	return doc
}

func TestText(t *testing.T) {
	doc := parse(t, `<div class="name">  Khabib
		<span>Nurmagomedov</span>&nbsp;</div><p class="own">Record: <b>29-0-0</b></p>`)

	require.Equal(t, "Khabib Nurmagomedov", Text(doc.Find(".name")))
	require.Equal(t, "Record:", OwnText(doc.Find(".own")))
	require.Equal(t, "", Text(doc.Find(".missing")))
}

func TestGetAnchors(t *testing.T) {
	doc := parse(t, `<div>
		<a href="/ru/fighters/khabib-nurmagomedov.html"> Khabib <em>Nurmagomedov</em></a>
		<a href="/ru/events/ufc-300.html">UFC 300</a>
		<a href="%zz">broken</a>
		<a>no href</a>
	</div>`)

	anchors := GetAnchors(context.Background(), doc.Find("a"))
	expected := []Anchor{
		{Name: "Khabib Nurmagomedov", Href: "/ru/fighters/khabib-nurmagomedov.html"},
		{Name: "UFC 300", Href: "/ru/events/ufc-300.html"},
		{Name: "no href", Href: ""},
	}
	if diff := cmp.Diff(expected, anchors); diff != "" {
		t.Fatal(diff)
	}
}
