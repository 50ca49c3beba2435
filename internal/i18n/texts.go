package i18n

// Texts holds the user-facing strings of the web interface
type Texts struct {
	DashboardTitle    string `json:"dashboard_title"`
	DashboardSubtitle string `json:"dashboard_subtitle"`
	UploadReceipt     string `json:"upload_receipt"`
	UploadText        string `json:"upload_text"`
	UploadSupported   string `json:"upload_supported"`
	ProcessBtn        string `json:"process_btn"`
	AIAssistant       string `json:"ai_assistant"`
	AIPlaceholder     string `json:"ai_placeholder"`
	AskAI             string `json:"ask_ai"`
	AIWelcome         string `json:"ai_welcome"`
	YourReceipts      string `json:"your_receipts"`
	RefreshReceipts   string `json:"refresh_receipts"`
	NoReceipts        string `json:"no_receipts"`
	Logout            string `json:"logout"`
	TotalReceipts     string `json:"total_receipts"`
	TotalSpent        string `json:"total_spent"`
	TopCategory       string `json:"top_category"`
	AvgSpend          string `json:"avg_spend"`
	CreateWallet      string `json:"create_wallet"`
	Processing        string `json:"processing"`
	Thinking          string `json:"thinking"`
	Loading           string `json:"loading"`
	ReceiptProcessed  string `json:"receipt_processed"`
	ErrorProcessing   string `json:"error_processing"`
}

var texts = map[string]Texts{
	"en": {
		DashboardTitle:    "🧾 Raseed Dashboard",
		DashboardSubtitle: "AI-powered receipt processing and analysis",
		UploadReceipt:     "📸 Upload Receipt",
		UploadText:        "Click to upload or drag and drop your receipt image",
		UploadSupported:   "Supports JPG, PNG, GIF",
		ProcessBtn:        "Process Receipt",
		AIAssistant:       "🤖 AI Assistant",
		AIPlaceholder:     "Ask about your spending, receipts, or get financial insights...",
		AskAI:             "Ask AI",
		AIWelcome:         "Welcome to Raseed AI Assistant! Upload some receipts and ask me questions about your spending patterns, favorite stores, or get financial insights.",
		YourReceipts:      "📋 Your Receipts",
		RefreshReceipts:   "🔄 Refresh Receipts",
		NoReceipts:        "No receipts found. Upload your first receipt!",
		Logout:            "Logout",
		TotalReceipts:     "Total Receipts",
		TotalSpent:        "Total Spent",
		TopCategory:       "Top Category",
		AvgSpend:          "Avg. per Receipt",
		CreateWallet:      "📱 Create Wallet Pass",
		Processing:        "Processing your receipt...",
		Thinking:          "AI is thinking...",
		Loading:           "Loading receipts...",
		ReceiptProcessed:  "✅ Receipt Processed Successfully!",
		ErrorProcessing:   "❌ Error Processing Receipt",
	},
	"te": {
		DashboardTitle:    "🧾 రసీద్ డాష్బోర్డ్",
		DashboardSubtitle: "AI-శక్తితో రసీద్ ప్రాసెసింగ్ మరియు విశ్లేషణ",
		UploadReceipt:     "📸 రసీద్ అప్లోడ్ చేయండి",
		UploadText:        "రసీద్ ఇమేజ్‌ను అప్లోడ్ చేయడానికి క్లిక్ చేయండి లేదా డ్రాగ్ చేసి డ్రాప్ చేయండి",
		UploadSupported:   "JPG, PNG, GIF లను మద్దతు ఇస్తుంది",
		ProcessBtn:        "రసీద్ ప్రాసెస్ చేయండి",
		AIAssistant:       "🤖 AI సహాయకుడు",
		AIPlaceholder:     "మీ ఖర్చులు, రసీదులు గురించి అడగండి లేదా ఆర్థిక అంతర్దృష్టులను పొందండి...",
		AskAI:             "AI ని అడగండి",
		AIWelcome:         "రసీద్ AI సహాయకుడికి స్వాగతం! కొన్ని రసీదులను అప్లోడ్ చేసి, మీ ఖర్చు నమూనాలు, మీకు ఇష్టమైన దుకాణాలు లేదా ఆర్థిక అంతర్దృష్టుల గురించి నన్ను ప్రశ్నించండి.",
		YourReceipts:      "📋 మీ రసీదులు",
		RefreshReceipts:   "🔄 రసీదులను రిఫ్రెష్ చేయండి",
		NoReceipts:        "రసీదులు కనుగొనబడలేదు. మీ మొదటి రసీదును అప్లోడ్ చేయండి!",
		Logout:            "లాగ్ అవుట్",
		TotalReceipts:     "మొత్తం రసీదులు",
		TotalSpent:        "మొత్తం ఖర్చు",
		TopCategory:       "అత్యధిక వర్గం",
		AvgSpend:          "ప్రతి రసీదుకు సగటు ఖర్చు",
		CreateWallet:      "📱 వాలెట్ పాస్ సృష్టించండి",
		Processing:        "మీ రసీదును ప్రాసెస్ చేస్తోంది...",
		Thinking:          "AI ఆలోచిస్తోంది...",
		Loading:           "రసీదులు లోడ్ అవుతున్నాయి...",
		ReceiptProcessed:  "✅ రసీదు విజయవంతంగా ప్రాసెస్ చేయబడింది!",
		ErrorProcessing:   "❌ రసీదును ప్రాసెస్ చేయడంలో లోపం",
	},
	"kn": {
		DashboardTitle:    "🧾 ರಸೀದ್ ಡ್ಯಾಶ್‌ಬೋರ್ಡ್",
		DashboardSubtitle: "AI-ಶಕ್ತಿಯುತ ರಸೀದಿ ಸಂಸ್ಕರಣೆ ಮತ್ತು ವಿಶ್ಲೇಷಣೆ",
		UploadReceipt:     "📸 ರಸೀದಿ ಅಪ್‌ಲೋಡ್ ಮಾಡಿ",
		UploadText:        "ರಸೀದಿ ಚಿತ್ರವನ್ನು ಅಪ್‌ಲೋಡ್ ಮಾಡಲು ಕ್ಲಿಕ್ ಮಾಡಿ ಅಥವಾ ಎಳೆದು ಬಿಡಿ",
		UploadSupported:   "JPG, PNG, GIF ಗಳನ್ನು ಬೆಂಬಲಿಸುತ್ತದೆ",
		ProcessBtn:        "ರಸೀದಿ ಸಂಸ್ಕರಿಸಿ",
		AIAssistant:       "🤖 AI ಸಹಾಯಕ",
		AIPlaceholder:     "ನಿಮ್ಮ ಖರ್ಚು, ರಸೀದಿಗಳ ಬಗ್ಗೆ ಕೇಳಿ ಅಥವಾ ಆರ್ಥಿಕ ಒಳನೋಟಗಳನ್ನು ಪಡೆಯಿರಿ...",
		AskAI:             "AI ಗೆ ಕೇಳಿ",
		AIWelcome:         "ರಸೀದ್ AI ಸಹಾಯಕಕ್ಕೆ ಸುಸ್ವಾಗತ! ಕೆಲವು ರಸೀದಿಗಳನ್ನು ಅಪ್‌ಲೋಡ್ ಮಾಡಿ ಮತ್ತು ನಿಮ್ಮ ಖರ್ಚಿನ ಮಾದರಿಗಳು, ನಿಮ್ಮ ನೆಚ್ಚಿನ ಅಂಗಡಿಗಳು ಅಥವಾ ಆರ್ಥಿಕ ಒಳನೋಟಗಳ ಬಗ್ಗೆ ನನ್ನನ್ನು ಪ್ರಶ್ನಿಸಿ.",
		YourReceipts:      "📋 ನಿಮ್ಮ ರಸೀದಿಗಳು",
		RefreshReceipts:   "🔄 ರಸೀದಿಗಳನ್ನು ರಿಫ್ರೆಶ್ ಮಾಡಿ",
		NoReceipts:        "ರಸೀದಿಗಳು ಕಂಡುಬಂದಿಲ್ಲ. ನಿಮ್ಮ ಮೊದಲ ರಸೀದಿಯನ್ನು ಅಪ್‌ಲೋಡ್ ಮಾಡಿ!",
		Logout:            "ಲಾಗ್ ಔಟ್",
		TotalReceipts:     "ಒಟ್ಟು ರಸೀದಿಗಳು",
		TotalSpent:        "ಒಟ್ಟು ಖರ್ಚು",
		TopCategory:       "ಅಗ್ರ ವರ್ಗ",
		AvgSpend:          "ಪ್ರತಿ ರಸೀದಿಗೆ ಸರಾಸರಿ ಖರ್ಚು",
		CreateWallet:      "📱 ವಾಲೆಟ್ ಪಾಸ್ ರಚಿಸಿ",
		Processing:        "ನಿಮ್ಮ ರಸೀದಿಯನ್ನು ಸಂಸ್ಕರಿಸಲಾಗುತ್ತಿದೆ...",
		Thinking:          "AI ಯೋಚಿಸುತ್ತಿದೆ...",
		Loading:           "ರಸೀದಿಗಳನ್ನು ಲೋಡ್ ಮಾಡಲಾಗುತ್ತಿದೆ...",
		ReceiptProcessed:  "✅ ರಸೀದಿ ಯಶಸ್ವಿಯಾಗಿ ಸಂಸ್ಕರಿಸಲ್ಪಟ್ಟಿದೆ!",
		ErrorProcessing:   "❌ ರಸೀದಿ ಸಂಸ್ಕರಣೆಯಲ್ಲಿ ದೋಷ",
	},
}
