package transaction

import (
	"strconv"
	"time"

	"github.com/beevik/etree"
)

// BuildMonthlyStatement renders the card's current-month ledger entries as
// an XML statement document.
func (s *Service) BuildMonthlyStatement(cardID int64) ([]byte, error) {
	txs, err := s.GetCurrentMonthTransactions(cardID)
	if err != nil {
		return nil, err
	}

	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)

	statement := doc.CreateElement("Statement")
	statement.CreateAttr("cardId", strconv.FormatInt(cardID, 10))
	statement.CreateAttr("month", time.Now().Format("2006-01"))
	statement.CreateAttr("generatedAt", time.Now().Format(time.RFC3339))

	list := statement.CreateElement("Transactions")
	list.CreateAttr("count", strconv.Itoa(len(txs)))
	for _, tx := range txs {
		entry := list.CreateElement("Transaction")
		entry.CreateAttr("code", tx.Code)
		entry.CreateAttr("type", tx.Type)
		entry.CreateElement("Amount").SetText(tx.Amount.String())
		entry.CreateElement("CreatedAt").SetText(tx.CreatedAt.Format(time.RFC3339))
		if tx.SenderCardID != nil {
			entry.CreateElement("SenderCardId").SetText(strconv.FormatInt(*tx.SenderCardID, 10))
		}
		if tx.RecipientCardID != nil {
			entry.CreateElement("RecipientCardId").SetText(strconv.FormatInt(*tx.RecipientCardID, 10))
		}
	}

	doc.Indent(2)
	return doc.WriteToBytes()
}
