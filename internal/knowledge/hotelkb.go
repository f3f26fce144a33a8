// Package knowledge carrega a base de conhecimento do hotel usada como
// contexto nos prompts dos agentes.
package knowledge

// HotelKB é a base de conhecimento operacional do hotel, injetada nos
// prompts de sistema dos agentes que precisam de dados de quartos,
// preços e políticas.
const HotelKB = `
========================================================
DAS ELB HOTEL & RESTAURANT -- OPERATIONS KNOWLEDGE BASE
========================================================

HOTEL PROFILE
-------------
Name:        Das ELB Hotel & Restaurant
Address:     Seilerweg 19, 39114 Magdeburg, Germany
Phone:       +49 391 756 326 60
Email:       rezeption@das-elb.de
Website:     https://www.das-elb-hotel.com
Total Rooms: 33 modern apartments
Location:    Stadtpark Rotehorn, on the Elbe riverbank, Magdeburg
Owner:       B. Singh Hotel GmbH & Co. KG (Bhupinder Singh)

OPERATING HOURS
---------------
Reception:   Daily 07:00 - 21:30
Restaurant:  12:00 - 22:00
Breakfast:   07:30 - 10:30
Check-in:    From 13:00 (early check-in on request, subject to availability)
Check-out:   Until 11:00 (late check-out on request, subject to availability)

SPECIAL FEATURES
----------------
- Panoramic Elbe river views from top-floor suites and balconies
- Located in Stadtpark Rotehorn, peaceful nature surroundings
- Restaurant serving Indian and European cuisine
- Full conference and event facilities
- Free WiFi throughout
- On-site parking
- Wheelchair accessible
- Pets allowed

==========================
ROOM TYPES & PRICING
==========================

1. KOMFORT APARTMENT
   API key:    "komfort"
   Size:       40 m2
   Capacity:   2 persons
   Price:      from EUR 89/night
   View:       Stadtpark Rotehorn
   Amenities:  Kingsize bed, kitchenette, Smart TV, free WiFi,
               desk/workspace, shower bathroom, air conditioning

2. KOMFORT PLUS APARTMENT
   API key:    "komfort plus"
   Size:       45 m2
   Capacity:   2-3 persons
   Price:      from EUR 119/night
   View:       Partial Elbe view, balcony
   Amenities:  Kingsize bed, separate living area, fully equipped kitchen,
               Smart TV, free WiFi, desk/workspace, rain shower bathroom,
               air conditioning, balcony

3. SUITE DELUXE
   API key:    "suite"
   Size:       60 m2
   Capacity:   2-4 persons
   Price:      from EUR 169/night
   View:       Panoramic Elbe view, panorama balcony
   Amenities:  Kingsize bed, large living area, fully equipped kitchen,
               55" Smart TV, free WiFi, dedicated workspace, luxury bathroom
               with bathtub, air conditioning, panorama balcony with Elbe
               view, Nespresso machine

==========================
CONFERENCE & MEETING ROOMS
==========================

1. VERANSTALTUNGS-/MEETINGRAUM (Main Event Room)
   API id:     "veranstaltungsraum"
   Capacity:   Up to 30 persons
   Price:      EUR 400/day
   Features:   Full AV setup, flexible seating, natural light

2. WORKSHOP RAUM #405
   API id:     "workshop-405"
   Capacity:   Up to 14 persons
   Price:      EUR 250/day
   Features:   Ideal for workshops, breakout sessions

==========================
CATERING PACKAGES (per person)
==========================

STARTER (Half-day)             -- EUR 59 per person
  Includes:
  - 1 morning coffee break (filter coffee, tea, seasonal fruit, biscuits)
  - Mineral water & soft drinks (0.2l) on tables throughout the day

STARTER PLUS (Full-day)        -- EUR 89 per person  <- MOST POPULAR
  Includes:
  - 1 morning coffee break
  - Mineral water & soft drinks on tables
  - 1 afternoon coffee break
  - Lunch buffet

KOMFORT (Full-day + Evening)   -- EUR 119 per person
  Includes:
  - 1 morning coffee break
  - Mineral water & soft drinks on tables
  - Lunch buffet
  - 1 afternoon coffee break
  - Dinner buffet

Dietary notes: Vegetarian, vegan, and allergen-specific requirements
accommodated on request, mention in booking.

==========================
EQUIPMENT RENTAL (per day)
==========================
Beamer & Screen (Leinwand):          EUR 50
Flipcharts & Markers:                EUR 15
Sound System (Beschallungsanlage):   EUR 80
Video Conferencing System:           EUR 100
Whiteboard:                          EUR 10
Moderation Kit (Moderationskoffer):  EUR 25

==========================
CANCELLATION POLICIES
==========================
Room Bookings:
  - Free cancellation until 24 hours before check-in
  - No-show or cancellation within 24h: full first night charged

Restaurant Reservations:
  - Free cancellation until 24 hours before reservation
  - No-show: invoice may be issued for reserved covers

Conference Bookings:
  - Cancellation terms communicated individually in the booking contract
  - Groups >10: special deposit and cancellation terms apply

==========================
PRICING EXAMPLES FOR COMMON REQUESTS
==========================
Example: 2-night stay, Suite Deluxe, 2 adults
  -> 2 x EUR 169 = EUR 338 minimum (plus any extras)

Example: Full-day conference, 20 persons, Starter Plus catering, Beamer
  -> Room: EUR 400 + Catering: 20 x EUR 89 + Beamer: EUR 50 = EUR 2,230

Example: Half-day workshop, 10 persons, Starter catering, Flipcharts
  -> Room: EUR 250 + Catering: 10 x EUR 59 + Flipcharts: EUR 15 = EUR 855

==========================
UPSELL RULES (guide AI suggestions)
==========================
- Group stay >10 rooms        -> Suggest banquet hall package + dedicated event manager
- Stay 4+ nights              -> Mention "long-stay discount available on request"
- Business conference         -> Upsell from Starter to Starter Plus catering
- Conference >20 persons      -> Upsell Veranstaltungsraum if they inquired about Workshop Raum
- Suite Deluxe inquiry        -> Mention panoramic Elbe view and Nespresso machine
- Honeymoon / anniversary     -> Suggest Suite Deluxe + romantic decoration add-on
- Restaurant reservation 6+   -> Suggest pre-ordering from the set menu

==========================
PAYMENT
==========================
Accepted: All major credit cards, cash, bank transfer
Invoices available for corporate clients

==========================
ACCESSIBILITY
==========================
Wheelchair accessible throughout public areas and selected rooms.
Notify in advance for accessible room allocation.

==========================
ESCALATION CONTACTS
==========================
Manager email:    manager@das-elb.de
Reception phone:  +49 391 756 326 60
Escalate when:
  - Complaint severity: high or critical
  - Group booking >10 rooms (requires manager sign-off)
  - Estimated revenue >EUR 5,000 (single transaction)
  - Legal threats or refund disputes
  - VIP / press / media guests
  - Any no-show dispute over EUR 500

==========================
CONTACT LANGUAGE GUIDE
==========================
German emails -> Reply in formal German ("Sie" form, not "du")
  Sign-off:   "Mit freundlichen Gruessen,\nDas Team vom Das ELB Hotel & Restaurant"

English emails -> Reply in professional, warm English
  Sign-off:   "Warm regards,\nThe Das ELB Team"

Mixed / uncertain -> Default to German, add English translation below

Always include at the bottom of every reply:
  Seilerweg 19, 39114 Magdeburg
  +49 391 756 326 60
  rezeption@das-elb.de
  www.das-elb-hotel.com
`
