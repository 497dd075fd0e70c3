package contracts

// Palette maps enum values to the colour a client should render them in.
// Keys are "<Kind>.<Value>", e.g. "BotStatus.Trading".
type Palette map[string]string

// DefaultPalette is the colour table served to clients
var DefaultPalette = buildPalette()

// ColorOf looks up the colour for an enum value, "gray" when unmapped
func (p Palette) ColorOf(kind, value string) string {
	if c, ok := p[kind+"."+value]; ok {
		return c
	}
	return "gray"
}

func buildPalette() Palette {
	p := Palette{}
	add := func(kind string, colors map[string]string) {
		for v, c := range colors {
			p[kind+"."+v] = c
		}
	}

	add("BotStatus", map[string]string{
		string(BotTrading):   "green",
		string(BotAnalyzing): "blue",
		string(BotActive):    "green",
		string(BotLearning):  "purple",
		string(BotPaused):    "orange",
		string(BotInactive):  "gray",
		string(BotStopped):   "red",
		string(BotError):     "red",
	})
	add("RiskLevel", map[string]string{
		RiskVeryLow.String(): "green",
		RiskLow.String():     "mint",
		RiskMedium.String():  "yellow",
		RiskHigh.String():    "orange",
		RiskExtreme.String(): "red",
	})
	add("DebugSeverity", map[string]string{
		string(SeverityInfo):     "blue",
		string(SeverityWarning):  "orange",
		string(SeverityError):    "red",
		string(SeverityCritical): "purple",
	})
	add("ErrorType", map[string]string{
		string(ErrorRuntime):          "red",
		string(ErrorNetwork):          "orange",
		string(ErrorMemory):           "purple",
		string(ErrorMemoryLeak):       "purple",
		string(ErrorUI):               "blue",
		string(ErrorData):             "green",
		string(ErrorValidation):       "yellow",
		string(ErrorAPI):              "cyan",
		string(ErrorParsing):          "mint",
		string(ErrorAuthentication):   "pink",
		string(ErrorPermission):       "indigo",
		string(ErrorFile):             "brown",
		string(ErrorDatabase):         "teal",
		string(ErrorConfiguration):    "gray",
		string(ErrorPerformanceIssue): "orange",
	})
	add("TradeResult", map[string]string{
		string(ResultWin):       "green",
		string(ResultLoss):      "red",
		string(ResultBreakeven): "orange",
		string(ResultRunning):   "blue",
	})
	add("TradeDirection", map[string]string{
		string(DirectionBuy):  "green",
		string(DirectionSell): "red",
	})
	add("TradeGrade", map[string]string{
		string(GradeAll):     "gray",
		string(GradeElite):   "gold",
		string(GradeGood):    "green",
		string(GradeAverage): "orange",
		string(GradePoor):    "red",
	})
	add("BotRarity", map[string]string{
		string(RarityCommon):    "gray",
		string(RarityUncommon):  "green",
		string(RarityRare):      "blue",
		string(RarityEpic):      "purple",
		string(RarityLegendary): "orange",
		string(RarityMythic):    "red",
	})
	add("BotTier", map[string]string{
		string(TierBronze):   "brown",
		string(TierSilver):   "gray",
		string(TierGold):     "gold",
		string(TierPlatinum): "cyan",
		string(TierDiamond):  "blue",
		string(TierMaster):   "purple",
	})
	add("BotAvailability", map[string]string{
		string(AvailabilityAvailable):   "green",
		string(AvailabilityBusy):        "orange",
		string(AvailabilityOffline):     "gray",
		string(AvailabilityMaintenance): "yellow",
	})
	add("VerificationStatus", map[string]string{
		string(VerificationUnverified): "gray",
		string(VerificationVerified):   "blue",
		string(VerificationPremium):    "gold",
		string(VerificationElite):      "purple",
	})
	add("SignalStatus", map[string]string{
		string(SignalPending):   "orange",
		string(SignalActive):    "blue",
		string(SignalFilled):    "green",
		string(SignalCancelled): "gray",
		string(SignalExpired):   "red",
	})
	add("SessionStatus", map[string]string{
		string(SessionRunning):            "blue",
		string(SessionCompleted):          "green",
		string(SessionCompletedWithIssue): "orange",
		string(SessionFailed):             "red",
	})
	add("ConnectionStatus", map[string]string{
		string(VPSConnected):    "green",
		string(VPSConnecting):   "orange",
		string(VPSDisconnected): "gray",
		string(VPSError):        "red",
		string(VPSMaintenance):  "yellow",
	})

	return p
}
