// Package render builds the presentation tree of an article document. Both
// export backends and the live view consume the same tree, there is no
// per-backend markup variant.
package render

import (
	"strconv"
	"strings"

	"github.com/beevik/etree"

	"artc/article"
)

// Options control presentation details that are configurable per run.
type Options struct {
	// SentenceCaseHeadings lowers everything after the first letter of
	// section headings.
	SentenceCaseHeadings bool
	// LeadEmphasis wraps the opening words of the lead section in a semibold
	// span, one word per title token.
	LeadEmphasis bool
	// AccessedDate is the fixed access date appended to every reference.
	AccessedDate string
}

// Renderer builds markup for one document with its merged reference list.
type Renderer struct {
	doc      *article.Document
	resolver *article.Resolver
	opt      Options
}

func New(doc *article.Document, resolver *article.Resolver, opt Options) *Renderer {
	return &Renderer{doc: doc, resolver: resolver, opt: opt}
}

// Body builds the full article view: title, floated person infobox, sections
// in display order and the merged references section.
func (r *Renderer) Body() *etree.Element {
	root := etree.NewElement("div")
	root.CreateAttr("class", "w-full bg-white")

	main := root.CreateElement("main")
	main.CreateAttr("class", "max-w-none mx-none py-8 bg-white")

	titleWrap := main.CreateElement("div")
	titleWrap.CreateAttr("class", "mb-4")
	h1 := titleWrap.CreateElement("h1")
	h1.CreateAttr("class", "text-4xl leading-10 tracking-tighter text-[#554348] font-semibold font-playfair mb-2")
	h1.SetText(r.doc.Title())
	appendDivider(titleWrap, "mb-4")

	if r.doc.Infobox != nil {
		r.appendPersonInfobox(main, r.doc.Infobox)
	}

	for _, ns := range r.doc.OrderedSections() {
		sectionDiv := main.CreateElement("div")
		sectionDiv.CreateAttr("class", "mb-8")
		blocksDiv := sectionDiv.CreateElement("div")
		blocksDiv.CreateAttr("class", "space-y-4")
		for i := range ns.Section.Blocks {
			r.appendBlock(blocksDiv, &ns.Section.Blocks[i], ns.Name)
		}
	}

	if global := r.resolver.Global(); len(global) > 0 {
		r.appendReferences(main, global)
	}
	return root
}

// BodyHTML serializes the article view to an HTML fragment.
func (r *Renderer) BodyHTML() (string, error) {
	doc := etree.NewDocument()
	doc.SetRoot(r.Body())
	return doc.WriteToString()
}

func (r *Renderer) appendBlock(parent *etree.Element, block *article.Block, sectionName string) {
	switch block.Type {
	case article.BlockHeading:
		wrap := parent.CreateElement("div")
		wrap.CreateAttr("class", "mb-4")
		heading := block.Content.TitleText()
		if r.opt.SentenceCaseHeadings {
			heading = toSentenceCase(heading)
		}
		h2 := wrap.CreateElement("h2")
		h2.CreateAttr("class", "text-2xl font-normal font-playfair mb-2 mt-8")
		h2.SetText(heading)
		appendDivider(wrap, "mb-4")

	case article.BlockSubheading:
		wrap := parent.CreateElement("div")
		wrap.CreateAttr("class", "mb-3")
		h3 := wrap.CreateElement("h3")
		h3.CreateAttr("class", "text-lg font-semibold font-libre mb-1 mt-4")
		h3.SetText(block.Content.TitleText())

	case article.BlockInfobox:
		wrap := parent.CreateElement("div")
		wrap.CreateAttr("class", "mb-6")
		headWrap := wrap.CreateElement("div")
		headWrap.CreateAttr("class", "mb-4")
		h2 := headWrap.CreateElement("h2")
		h2.CreateAttr("class", "text-2xl font-normal font-playfair mb-2 mt-8")
		h2.SetText("Notable investments")
		appendDivider(headWrap, "mb-4")
		r.appendInvestmentsTable(wrap, block.Content.Rows, sectionName)

	default:
		// paragraph and anything unrecognized
		wrap := parent.CreateElement("div")
		wrap.CreateAttr("class", "mb-4")
		p := wrap.CreateElement("p")
		p.CreateAttr("class", "text-black leading-relaxed mb-4 font-libre text-md")
		r.appendParagraphContent(p, block.Content.BodyText(), block.Citations, sectionName)
	}
}

// appendParagraphContent writes paragraph text with optional lead emphasis
// and trailing citation markers.
func (r *Renderer) appendParagraphContent(p *etree.Element, content string, citations []article.Citation, sectionName string) {
	if r.opt.LeadEmphasis && sectionName == "lead" {
		limit := r.doc.TitleWordCount()
		for i, token := range splitKeepSpace(content) {
			// even positions are words, odd ones the whitespace between them
			if i/2 < limit && strings.TrimSpace(token) != "" {
				span := p.CreateElement("span")
				span.CreateAttr("class", "font-semibold")
				span.SetText(token)
			} else {
				p.CreateText(token)
			}
		}
	} else {
		p.CreateText(content)
	}

	if len(citations) == 0 {
		return
	}
	p.CreateText(" ")
	for _, c := range citations {
		number := r.resolver.Resolve(sectionName, c.ID)
		appendCitationMark(p, number)
	}
}

// appendCitationMark writes the superscript [N] anchor pointing at the
// matching reference row.
func appendCitationMark(parent *etree.Element, number string) {
	sup := parent.CreateElement("sup")
	a := sup.CreateElement("a")
	a.CreateAttr("href", "#ref-"+number)
	a.CreateAttr("class", "text-blue-600 hover:text-blue-800 underline text-xs")
	a.SetText("[" + number + "]")
}

var investmentColumns = []string{"Company", "Year", "Round", "Amount Invested", "Outcome"}

func (r *Renderer) appendInvestmentsTable(parent *etree.Element, rows []article.InvestmentRow, sectionName string) {
	wrap := parent.CreateElement("div")
	wrap.CreateAttr("class", "overflow-x-auto")
	table := wrap.CreateElement("table")
	table.CreateAttr("class", "min-w-full border-collapse border border-gray-300")

	thead := table.CreateElement("thead")
	headRow := thead.CreateElement("tr")
	headRow.CreateAttr("class", "bg-gray-50")
	for _, col := range investmentColumns {
		th := headRow.CreateElement("th")
		th.CreateAttr("class", "px-4 py-3 text-left text-sm font-medium text-gray-700 border-b border-gray-300")
		th.SetText(col)
	}

	tbody := table.CreateElement("tbody")
	for i, row := range rows {
		tr := tbody.CreateElement("tr")
		if i%2 == 1 {
			tr.CreateAttr("class", "bg-gray-50")
		}

		company := appendInvestmentCell(tr, row.CompanyName)
		if len(row.Citations) > 0 {
			span := company.CreateElement("span")
			span.CreateAttr("class", "ml-1")
			for _, c := range row.Citations {
				appendCitationMark(span, r.resolver.Resolve(sectionName, c.ID))
			}
		}
		appendInvestmentCell(tr, row.Year.String())
		appendInvestmentCell(tr, row.Round)
		appendInvestmentCell(tr, row.AmountInvested)
		appendInvestmentCell(tr, row.Outcome)
	}
}

func appendInvestmentCell(tr *etree.Element, text string) *etree.Element {
	td := tr.CreateElement("td")
	td.CreateAttr("class", "px-4 py-3 text-sm text-gray-900 border-b border-gray-200")
	td.SetText(text)
	return td
}

func (r *Renderer) appendPersonInfobox(parent *etree.Element, p *article.PersonInfobox) {
	box := parent.CreateElement("div")
	box.CreateAttr("class", "float-right ml-6 mb-4 w-72 border border-gray-300 bg-gray-50 p-4 text-sm font-libre")

	if src := p.ImageSource(); src != "" {
		figure := box.CreateElement("div")
		figure.CreateAttr("class", "text-center mb-3")
		img := figure.CreateElement("img")
		img.CreateAttr("src", src)
		img.CreateAttr("alt", p.Name)
		img.CreateAttr("class", "w-full max-w-64 h-auto border border-gray-300")
		if p.Name != "" {
			caption := figure.CreateElement("div")
			caption.CreateAttr("class", "text-xs text-gray-600 mt-1 italic")
			caption.SetText(p.Name)
		}
	}

	table := box.CreateElement("table")
	table.CreateAttr("class", "w-full text-sm")
	tbody := table.CreateElement("tbody")
	for _, row := range p.Rows() {
		tr := tbody.CreateElement("tr")
		label := tr.CreateElement("td")
		label.CreateAttr("class", "font-semibold py-1 pr-2 text-gray-700 align-top")
		label.SetText(row.Label)
		value := tr.CreateElement("td")
		value.CreateAttr("class", "py-1 whitespace-pre-line")
		value.SetText(row.Value)
	}
}

func (r *Renderer) appendReferences(parent *etree.Element, global []article.GlobalReference) {
	section := parent.CreateElement("div")
	section.CreateAttr("class", "mt-16 pt-8 border-t border-gray-200")

	h2 := section.CreateElement("h2")
	h2.CreateAttr("class", "text-2xl font-normal font-playfair text-gray-900 mb-6")
	h2.SetText("References")

	grid := section.CreateElement("div")
	grid.CreateAttr("class", "text-black leading-relaxed font-libre text-[14px] grid grid-cols-1 md:grid-cols-2 lg:grid-cols-3 gap-4")

	for _, ref := range global {
		entry := grid.CreateElement("div")
		entry.CreateAttr("id", "ref-"+strconv.Itoa(ref.GlobalID))
		entry.CreateAttr("class", "mb-4")

		num := entry.CreateElement("span")
		num.CreateAttr("class", "text-blue-600 font-semibold")
		num.SetText("[" + strconv.Itoa(ref.GlobalID) + "]")
		entry.CreateText(" ")

		r.appendCitationText(entry, ref.Reference)
	}
}

// appendCitationText writes an MLA style citation: author, quoted title,
// publisher, date, linked domain and the access date.
func (r *Renderer) appendCitationText(parent *etree.Element, ref article.Reference) {
	if ref.Author != "" && ref.Author != "—" {
		parent.CreateText(ref.Author + ". ")
	}
	parent.CreateText(`"` + ref.Title + `." `)
	if ref.Publisher != "" && ref.Publisher != "—" {
		parent.CreateText(ref.Publisher + ", ")
	}
	if ref.Date != "" {
		parent.CreateText(ref.Date + ", ")
	}
	if ref.URL != "" {
		domain := domainOf(ref.URL)
		a := parent.CreateElement("a")
		a.CreateAttr("href", ref.URL)
		a.CreateAttr("target", "_blank")
		a.CreateAttr("rel", "noopener noreferrer")
		a.CreateAttr("class", "text-blue-600 hover:text-blue-800 underline truncate block")
		a.CreateAttr("title", domain)
		a.SetText(domain)
	}
	parent.CreateText(". Accessed " + r.opt.AccessedDate + ".")
}

func appendDivider(parent *etree.Element, class string) {
	hr := parent.CreateElement("hr")
	hr.CreateAttr("class", "border-gray-300 "+class)
}

// toSentenceCase upper-cases the first letter and lower-cases the rest.
func toSentenceCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + strings.ToLower(s[1:])
}

// splitKeepSpace splits a string into alternating word and whitespace tokens,
// starting with a word token (possibly empty when the string opens with
// whitespace). Word positions are even, so position/2 counts words.
func splitKeepSpace(s string) []string {
	var tokens []string
	i := 0
	for i < len(s) {
		j := i
		for j < len(s) && !isSpace(s[j]) {
			j++
		}
		tokens = append(tokens, s[i:j])
		if j >= len(s) {
			break
		}
		k := j
		for k < len(s) && isSpace(s[k]) {
			k++
		}
		tokens = append(tokens, s[j:k])
		i = k
	}
	return tokens
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\f' || c == '\v'
}

func domainOf(url string) string {
	s := strings.TrimPrefix(url, "https://")
	s = strings.TrimPrefix(s, "http://")
	return strings.TrimPrefix(s, "www.")
}
