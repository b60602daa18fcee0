// Package bot maps chat commands onto the analysis, scan and subscription services.
package bot

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"BistSentinel/internal/analyzer"
	"BistSentinel/internal/calculator"
	"BistSentinel/internal/model"
	"BistSentinel/internal/recorder"
	"BistSentinel/internal/scanner"
)

// Reply is what a command produces: an optional PNG plus text (caption when Image is set).
type Reply struct {
	Image []byte
	Text  string
}

// Analysis is the single-symbol surface used by the chart and quote commands.
type Analysis interface {
	Analyze(ctx context.Context, symbol, code string) analyzer.Result
	Price(ctx context.Context, symbol string) string
	Prices(ctx context.Context, symbols []string) []string
	TechnicalSummary(ctx context.Context, symbol string) string
}

// Scanner ranks a universe.
type Scanner interface {
	Scan(ctx context.Context, code string, universe []string) (*model.ScanReport, error)
}

// Registry is the subscriber set.
type Registry interface {
	Subscribe(id int64) (bool, error)
	Unsubscribe(id int64) (bool, error)
	Len() int
}

// PopularSymbols are quoted by /bist.
var PopularSymbols = []string{"THYAO", "GARAN", "ASELS", "AKBNK", "EREGL"}

// Router dispatches chat commands.
type Router struct {
	Analysis  Analysis
	Scanner   Scanner
	Registry  Registry
	Recorder  recorder.Recorder
	AdminID   int64
	Universe  []string
	ScanLimit int
}

// NewRouter creates a Router over the BIST30 universe.
func NewRouter(a Analysis, s Scanner, reg Registry, rec recorder.Recorder, adminID int64) *Router {
	if rec == nil {
		rec = recorder.NewNoopRecorder()
	}
	return &Router{
		Analysis: a,
		Scanner:  s,
		Registry: reg,
		Recorder: rec,
		AdminID:  adminID,
		Universe: model.BIST30,
	}
}

// Handle runs the command in text on behalf of chatID.
func (r *Router) Handle(ctx context.Context, chatID int64, user, text string) Reply {
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return Reply{}
	}
	cmd := strings.ToLower(fields[0])
	if at := strings.IndexByte(cmd, '@'); at > 0 {
		cmd = cmd[:at]
	}
	args := fields[1:]

	switch cmd {
	case "/start":
		return Reply{Text: welcome(user)}
	case "/yardim", "/help", "/menu":
		return Reply{Text: helpText}
	case "/abone":
		return r.subscribe(chatID)
	case "/cikis":
		return r.unsubscribe(chatID)
	case "/aboneler":
		if r.AdminID == 0 || chatID != r.AdminID {
			return Reply{Text: "⛔ Bu komut sadece yönetici içindir."}
		}
		return Reply{Text: fmt.Sprintf("👥 Toplam abone: %d", r.Registry.Len())}
	case "/fiyat":
		if len(args) == 0 {
			return Reply{Text: "Lütfen bir hisse kodu girin. Örn: /fiyat THYAO"}
		}
		return Reply{Text: r.Analysis.Price(ctx, args[0])}
	case "/bist":
		return Reply{Text: strings.Join(r.Analysis.Prices(ctx, PopularSymbols), "\n")}
	case "/t3":
		if len(args) == 0 {
			return Reply{Text: "Lütfen bir hisse kodu girin. Örn: /t3 THYAO"}
		}
		return r.chart(ctx, args[0], "t3")
	case "/rsi", "/macd", "/bb":
		if len(args) == 0 {
			return Reply{Text: fmt.Sprintf("Lütfen bir hisse kodu girin. Örn: %s THYAO", cmd)}
		}
		return r.chart(ctx, args[0], strings.TrimPrefix(cmd, "/"))
	case "/ind":
		if len(args) < 2 {
			return Reply{Text: "Kullanım: /ind <HISSE> <INDIKATOR>\nÖrn: /ind THYAO rsi\nÖrn: /ind GARAN macd"}
		}
		return r.chart(ctx, args[0], args[1])
	case "/teknik":
		if len(args) == 0 {
			return Reply{Text: "Lütfen bir hisse kodu girin. Örn: /teknik THYAO"}
		}
		return Reply{Text: r.Analysis.TechnicalSummary(ctx, args[0])}
	case "/tarama":
		code := "t3"
		if len(args) > 0 {
			code = args[0]
		}
		return r.scan(ctx, code)
	default:
		return Reply{Text: fmt.Sprintf("Bilinmeyen komut: %s\nMenü için /yardim yazın.", text)}
	}
}

func (r *Router) chart(ctx context.Context, symbol, code string) Reply {
	res := r.Analysis.Analyze(ctx, symbol, code)
	return Reply{Image: res.Image, Text: res.Text}
}

func (r *Router) subscribe(chatID int64) Reply {
	added, err := r.Registry.Subscribe(chatID)
	if err != nil {
		log.Printf("[ERROR] subscribe %d: %v", chatID, err)
		return Reply{Text: "⚠️ Abonelik kaydedilemedi, lütfen daha sonra tekrar deneyin."}
	}
	if !added {
		return Reply{Text: "ℹ️ Zaten abonesiniz."}
	}
	return Reply{Text: "✅ Başarıyla abone oldunuz! Artık TradingView sinyallerini alacaksınız."}
}

func (r *Router) unsubscribe(chatID int64) Reply {
	removed, err := r.Registry.Unsubscribe(chatID)
	if err != nil {
		log.Printf("[ERROR] unsubscribe %d: %v", chatID, err)
		return Reply{Text: "⚠️ Abonelik iptali kaydedilemedi, lütfen daha sonra tekrar deneyin."}
	}
	if !removed {
		return Reply{Text: "ℹ️ Zaten abone değilsiniz."}
	}
	return Reply{Text: "❌ Abonelikten çıktınız. Artık sinyal almayacaksınız."}
}

func (r *Router) scan(ctx context.Context, code string) Reply {
	report, err := r.Scanner.Scan(ctx, code, r.Universe)
	if err != nil {
		if errors.Is(err, calculator.ErrUnknownIndicator) {
			return Reply{Text: fmt.Sprintf("Bilinmeyen indikatör: %s\nKullanılabilir kodlar: %s",
				code, strings.Join(calculator.Codes(), ", "))}
		}
		return Reply{Text: fmt.Sprintf("Tarama başarısız: %v", err)}
	}
	if err := r.Recorder.RecordScan(report); err != nil {
		log.Printf("[ERROR] record scan: %v", err)
	}
	return Reply{Text: scanner.FormatReport(report, r.ScanLimit)}
}

func welcome(user string) string {
	if user == "" {
		user = "yatırımcı"
	}
	return fmt.Sprintf("Merhaba %s! 👋\n\n", user) +
		"BIST 30 hisselerini analiz etmene yardımcı olabilirim.\n\n" +
		"Kullanabileceğin komutlar:\n" +
		"/fiyat <HISSE> - Anlık fiyat sorgula\n" +
		"/t3 <HISSE> - 5dk T3 grafiği\n" +
		"/teknik <HISSE> - Detaylı teknik analiz özeti\n" +
		"/tarama <KOD> - BIST 30 taraması yap (t3, rsi, macd)\n" +
		"/bist - Popüler hisseleri listele\n" +
		"/yardim - Tüm komutları gör\n\n" +
		"Örnek: /t3 THYAO"
}

const helpText = `🤖 Yardım Menüsü

Abonelik:
/abone - Sinyal aboneliğini başlat
/cikis - Sinyal aboneliğini iptal et

Tarama:
/tarama - Varsayılan T3 taraması
/tarama <KOD> - Özel indikatör taraması (örn. /tarama rsi)

Temel Komutlar:
/fiyat <HISSE> - Anlık fiyat
/bist - Popüler hisseler
/teknik <HISSE> - Detaylı teknik analiz özeti

Grafik ve İndikatörler:
/t3 <HISSE> - T3 (Tilson) grafiği
/ind <HISSE> <KOD> - Özel indikatör grafiği
/rsi, /macd, /bb <HISSE> - Kısayollar

İndikatör Kodları:
rsi, macd, bb, stoch, adx, cci, sma50, sma200, ema20, ema50, t3`
