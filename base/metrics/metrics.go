package metrics

const (
	IPServerPktsReceivedH  = "The total number of packets received via IP"
	IPServerPktsReceivedN  = "ntpresponder_ip_server_pkts_received"
	IPServerPktsMalformedH = "The total number of malformed packets discarded via IP"
	IPServerPktsMalformedN = "ntpresponder_ip_server_pkts_malformed"
	IPServerReqsAcceptedH  = "The total number of requests accepted via IP"
	IPServerReqsAcceptedN  = "ntpresponder_ip_server_reqs_accepted"
	IPServerReqsServedH    = "The total number of requests served via IP"
	IPServerReqsServedN    = "ntpresponder_ip_server_reqs_served"
)
